package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haandev/iskidms/internal/auth"
	"github.com/haandev/iskidms/internal/device"
	"github.com/haandev/iskidms/internal/infrastructure/config"
	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

// testCookieName matches the config used by newTestServer.
const testCookieName = "iskidms_session"

// newTestServer creates a Server over an in-memory SQLite database and
// returns it with its router and the raw database handle.
func newTestServer(t *testing.T) (*Server, http.Handler, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
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

		CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
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
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	cfg := &config.Config{
		API: config.APIConfig{
			Host:     "127.0.0.1",
			Port:     0,
			Timeouts: config.APITimeoutConfig{Read: 5, Write: 5, Idle: 5},
		},
		Session: config.SessionConfig{
			TTLHours:             720,
			SweepIntervalMinutes: 60,
			CookieName:           testCookieName,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"},
	}

	log := logging.New(cfg.Logging, "test")
	users := auth.NewUserRepository(db)
	sessions := auth.NewSessionRepository(db)
	engine := device.NewEngine(device.NewRepository(db), users, log)

	srv, err := New(Deps{
		Config:   cfg,
		Logger:   log,
		Users:    users,
		Sessions: sessions,
		Devices:  engine,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv, srv.buildRouter(), db
}

// seedUser creates a user with a real password hash.
func seedUser(t *testing.T, db *sql.DB, username, password string, role auth.Role) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	user := &auth.User{Username: username, PasswordHash: hash, Role: role}
	if err := auth.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return user
}

// doJSON issues a request against the router with an optional JSON body and
// session cookie, returning the recorded response.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// login authenticates a seeded user and returns the session cookie.
func login(t *testing.T, handler http.Handler, username, password string) *http.Cookie {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login %s: no session cookie set", username)
	return nil
}

// seedAPITestDevice inserts a device row directly (empty ownerID for unowned).
func seedAPITestDevice(t *testing.T, db *sql.DB, id, ownerID, username, status string) {
	t.Helper()

	var owner any
	if ownerID != "" {
		owner = ownerID
	}
	_, err := db.Exec(
		`INSERT INTO devices (id, owner_id, username, password, status, created_at)
		 VALUES (?, ?, ?, 'devpass', ?, ?)`,
		id, owner, username, status, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("seeding device %s: %v", id, err)
	}
}

// decodeBody unmarshals a recorded JSON response into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return m
}
