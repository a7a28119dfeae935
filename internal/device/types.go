package device

import (
	"errors"
	"time"
)

// Status is the approval state of a device.
type Status string

const (
	// StatusPending means the device was created but not yet approved.
	StatusPending Status = "pending"

	// StatusActive means an admin approved the device. The transition is
	// one-way: there is no deactivation path.
	StatusActive Status = "active"
)

// Credential field limits, enforced on CSV import.
const (
	MaxUsernameLength = 50
	MaxPasswordLength = 100
)

// Device is a managed credential pair representing external equipment.
//
// The password is stored and serialised in cleartext by explicit product
// requirement: admins and the owning agent must be able to read it back.
type Device struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"owner_id,omitempty"` // nil means unowned
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// WithOwner is a device joined with its owner's username for listings.
// OwnerUsername is empty for unowned devices.
type WithOwner struct {
	Device
	OwnerUsername string `json:"owner_username,omitempty"`
}

// Domain errors for the device package.
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrPartialImport is returned when some CSV rows were inserted before
	// a storage failure stopped the batch.
	ErrPartialImport = errors.New("device: import partially failed")
)
