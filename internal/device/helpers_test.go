package device

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haandev/iskidms/internal/auth"
	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

// testDB creates a temporary SQLite database with the full schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "device-test-*.db")
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

// testEngine creates an engine over a fresh test database.
func testEngine(t *testing.T, db *sql.DB) *Engine {
	t.Helper()
	return NewEngine(NewRepository(db), auth.NewUserRepository(db), logging.Default())
}

// seedTestUser inserts a user with the given role and returns it.
func seedTestUser(t *testing.T, db *sql.DB, username string, role auth.Role) *auth.User {
	t.Helper()

	repo := auth.NewUserRepository(db)
	user := &auth.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return user
}

// seedTestDevice inserts a device directly and returns its ID.
func seedTestDevice(t *testing.T, db *sql.DB, id, ownerID, username string, status Status) {
	t.Helper()

	var owner any
	if ownerID != "" {
		owner = ownerID
	}
	_, err := db.Exec(
		`INSERT INTO devices (id, owner_id, username, password, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, owner, username, "devpass", string(status),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seeding test device %s: %v", id, err)
	}
}

// deviceRow reads a device's owner and status straight from the table.
func deviceRow(t *testing.T, db *sql.DB, id string) (ownerID string, status string) {
	t.Helper()

	var owner sql.NullString
	err := db.QueryRow(
		"SELECT owner_id, status FROM devices WHERE id = ?", id).Scan(&owner, &status)
	if err != nil {
		t.Fatalf("reading device %s: %v", id, err)
	}
	return owner.String, status
}

// countDevices returns the number of rows in the devices table.
func countDevices(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM devices").Scan(&count); err != nil {
		t.Fatalf("counting devices: %v", err)
	}
	return count
}
