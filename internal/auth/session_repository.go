package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// sessionIDBytes is the number of random bytes in a session ID (256-bit).
const sessionIDBytes = 32

// DefaultSessionTTL is the session lifetime used when none is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error)
	FindValid(ctx context.Context, id string) (*Session, error)
	Destroy(ctx context.Context, id string) error
	DestroyAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SQLiteSessionRepository implements SessionRepository using SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite-backed session repository.
func NewSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// newSessionID generates an unguessable random session identifier.
// The ID doubles as the bearer token, so it must come from crypto/rand.
func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create issues a new session for the user, expiring after ttl.
// A non-positive ttl falls back to DefaultSessionTTL.
func (r *SQLiteSessionRepository) Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	session := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID,
		session.CreatedAt.Format(time.RFC3339),
		session.ExpiresAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return session, nil
}

// FindValid returns the session with the given ID if it has not expired.
//
// An expired row behaves exactly like a missing one: ErrSessionNotFound is
// returned and the stale row is purged lazily, so callers clear any
// client-held token without learning whether the session ever existed.
func (r *SQLiteSessionRepository) FindValid(ctx context.Context, id string) (*Session, error) {
	var s Session
	var createdAt, expiresAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?", id,
	).Scan(&s.ID, &s.UserID, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("finding session: %w", err)
	}

	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	s.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled

	if !s.Valid(time.Now().UTC()) {
		// Lazy purge; the periodic sweep would catch it anyway.
		_ = r.Destroy(ctx, id) //nolint:errcheck // best effort
		return nil, ErrSessionNotFound
	}

	return &s, nil
}

// Destroy deletes a session. Deleting an absent session is not an error.
func (r *SQLiteSessionRepository) Destroy(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// DestroyAllForUser deletes every session belonging to a user.
// Used after an admin-forced password change so the agent must log in again.
func (r *SQLiteSessionRepository) DestroyAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("destroying sessions for user: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions whose expiry has passed.
// Returns the number of deleted rows. Safe to run concurrently with
// reads and writes; FindValid never returns expired rows regardless.
func (r *SQLiteSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}
