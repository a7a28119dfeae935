package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device persistence.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, id string) (*Device, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UpdateOwner(ctx context.Context, id string, ownerID *string) error
	ListByOwner(ctx context.Context, ownerID string) ([]Device, error)
	ListPending(ctx context.Context) ([]WithOwner, error)
	ListAll(ctx context.Context) ([]WithOwner, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed device repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new device. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if d.ID == "" {
		d.ID = "dev-" + uuid.NewString()[:8]
	}
	if d.Status == "" {
		d.Status = StatusPending
	}

	now := time.Now().UTC().Truncate(time.Second)
	d.CreatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, owner_id, username, password, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, ownerArg(d.OwnerID), d.Username, d.Password, string(d.Status),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by its unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	var d Device
	var ownerID sql.NullString
	var status, createdAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, owner_id, username, password, status, created_at FROM devices WHERE id = ?", id,
	).Scan(&d.ID, &ownerID, &d.Username, &d.Password, &status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("getting device: %w", err)
	}

	if ownerID.Valid {
		d.OwnerID = &ownerID.String
	}
	d.Status = Status(status)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// Approve transitions a device to active.
//
// Approving an already-active device succeeds without effect so that UI
// retries stay safe. Only a missing device is an error.
func (r *SQLiteRepository) Approve(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET status = ? WHERE id = ?", string(StatusActive), id)
	if err != nil {
		return fmt.Errorf("approving device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device permanently.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// UpdateOwner assigns, reassigns, or clears (nil) a device's owner.
// Status is untouched — ownership and approval are independent.
func (r *SQLiteRepository) UpdateOwner(ctx context.Context, id string, ownerID *string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET owner_id = ? WHERE id = ?", ownerArg(ownerID), id)
	if err != nil {
		return fmt.Errorf("updating device owner: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// ListByOwner returns all devices owned by the given user, newest first.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, username, password, status, created_at
		 FROM devices WHERE owner_id = ?
		 ORDER BY created_at DESC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing devices by owner: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		var d Device
		var owner sql.NullString
		var status, createdAt string

		if err := rows.Scan(&d.ID, &owner, &d.Username, &d.Password, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		if owner.Valid {
			d.OwnerID = &owner.String
		}
		d.Status = Status(status)
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// ListPending returns all pending devices joined with their owner's
// username. Unowned devices appear with an empty owner username.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]WithOwner, error) {
	return r.listJoined(ctx, `
		SELECT d.id, d.owner_id, d.username, d.password, d.status, d.created_at, u.username
		FROM devices d
		LEFT JOIN users u ON u.id = d.owner_id
		WHERE d.status = ?
		ORDER BY d.created_at ASC, d.id ASC`,
		string(StatusPending))
}

// ListAll returns every device joined with its owner's username.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]WithOwner, error) {
	return r.listJoined(ctx, `
		SELECT d.id, d.owner_id, d.username, d.password, d.status, d.created_at, u.username
		FROM devices d
		LEFT JOIN users u ON u.id = d.owner_id
		ORDER BY d.created_at DESC, d.id ASC`)
}

// listJoined executes an owner-joined device query.
func (r *SQLiteRepository) listJoined(ctx context.Context, query string, args ...any) ([]WithOwner, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []WithOwner{}
	for rows.Next() {
		var d WithOwner
		var owner, ownerUsername sql.NullString
		var status, createdAt string

		if err := rows.Scan(&d.ID, &owner, &d.Username, &d.Password,
			&status, &createdAt, &ownerUsername); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		if owner.Valid {
			d.OwnerID = &owner.String
		}
		d.OwnerUsername = ownerUsername.String
		d.Status = Status(status)
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// ownerArg converts an optional owner ID to a SQL argument.
func ownerArg(ownerID *string) any {
	if ownerID == nil {
		return nil
	}
	return *ownerID
}
