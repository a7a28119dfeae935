package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the full schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'agent',
			company TEXT,
			email TEXT,
			phone TEXT,
			contact_person TEXT,
			created_at TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_users_role ON users(role);

		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE INDEX idx_sessions_user ON sessions(user_id);
		CREATE INDEX idx_sessions_expires ON sessions(expires_at);

		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			owner_id TEXT,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE SET NULL
		) STRICT;

		CREATE INDEX idx_devices_owner ON devices(owner_id);
		CREATE INDEX idx_devices_status ON devices(status);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	return db
}

// seedTestUser inserts a user with the given role and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username string, role Role) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// seedTestDevice inserts a device owned by ownerID (empty for unowned).
func seedTestDevice(t *testing.T, db *sql.DB, id, ownerID, username string) {
	t.Helper()

	var owner any
	if ownerID != "" {
		owner = ownerID
	}
	_, err := db.Exec(
		`INSERT INTO devices (id, owner_id, username, password, status, created_at)
		 VALUES (?, ?, ?, ?, 'pending', ?)`,
		id, owner, username, "devpass", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seeding test device %s: %v", id, err)
	}
}

// expireSession rewrites a session's expiry into the past without deleting it.
func expireSession(t *testing.T, db *sql.DB, sessionID string) {
	t.Helper()

	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if _, err := db.Exec(
		"UPDATE sessions SET expires_at = ? WHERE id = ?", past, sessionID); err != nil {
		t.Fatalf("expiring session: %v", err)
	}
}

// countRows returns the number of rows in a table.
func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return count
}
