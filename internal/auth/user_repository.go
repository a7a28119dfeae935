package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListAgents(ctx context.Context) ([]AgentSummary, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = "id, username, password_hash, role, company, email, phone, contact_person, created_at"

// Create inserts a new user account. The ID is generated if empty.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Truncate(time.Second)
	user.CreatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, company, email, phone, contact_person, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, string(user.Role),
		nullString(user.Company), nullString(user.Email),
		nullString(user.Phone), nullString(user.ContactPerson),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetByUsername retrieves a user by their username.
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// ListAgents returns all agent accounts with their computed device counts,
// ordered by creation date.
func (r *SQLiteUserRepository) ListAgents(ctx context.Context) ([]AgentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.password_hash, u.role, u.company, u.email,
		       u.phone, u.contact_person, u.created_at, COUNT(d.id)
		FROM users u
		LEFT JOIN devices d ON d.owner_id = u.id
		WHERE u.role = ?
		GROUP BY u.id
		ORDER BY u.created_at ASC, u.id ASC`,
		string(RoleAgent))
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	agents := []AgentSummary{}
	for rows.Next() {
		var a AgentSummary
		var company, email, phone, contactPerson sql.NullString
		var role, createdAt string

		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &role,
			&company, &email, &phone, &contactPerson,
			&createdAt, &a.DeviceCount); err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}

		a.Role = Role(role)
		a.Company = company.String
		a.Email = email.String
		a.Phone = phone.String
		a.ContactPerson = contactPerson.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agents: %w", err)
	}

	return agents, nil
}

// UpdatePassword changes a user's password hash.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user account.
//
// The two deletion behaviours are distinct, explicit steps in one
// transaction: the user's sessions are cascade-deleted, while the user's
// devices survive with their ownership set to null. The schema's ON DELETE
// clauses back this up, but the invariant lives here where it is testable.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	// Cascade: sessions die with the account.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = ?", id); err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}

	// Nullify: devices become unowned, they are not deleted.
	if _, err := tx.ExecContext(ctx,
		"UPDATE devices SET owner_id = NULL WHERE owner_id = ?", id); err != nil {
		return fmt.Errorf("releasing user devices: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// scanUser scans a single user row.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var company, email, phone, contactPerson sql.NullString
	var role, createdAt string

	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role,
		&company, &email, &phone, &contactPerson, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.Company = company.String
	u.Email = email.String
	u.Phone = phone.String
	u.ContactPerson = contactPerson.String
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &u, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
