package device

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/haandev/iskidms/internal/auth"
	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

var importedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "iskidms_devices_imported_total",
	Help: "Total number of devices created through CSV import.",
})

// Engine implements the device lifecycle operations on top of the
// repositories. Role enforcement happens at the API layer; the engine
// enforces domain rules that hold regardless of caller (ownership targets
// must be agents, approval is one-way, imports are all-or-nothing).
type Engine struct {
	devices Repository
	users   auth.UserRepository
	logger  *logging.Logger
}

// NewEngine creates a device lifecycle engine.
func NewEngine(devices Repository, users auth.UserRepository, logger *logging.Logger) *Engine {
	return &Engine{devices: devices, users: users, logger: logger}
}

// CreateForAgent generates credentials and creates a pending device owned by
// the given agent. The owner must exist and have the agent role; admins
// cannot own devices.
//
// The generated password is returned in cleartext on the Device — this is
// the caller's one chance to show it, though it remains readable from the
// store by design.
func (e *Engine) CreateForAgent(ctx context.Context, agentID string) (*Device, error) {
	owner, err := e.users.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if owner.Role != auth.RoleAgent {
		return nil, auth.ErrNotAnAgent
	}

	username, err := GenerateUsername(owner.Username)
	if err != nil {
		return nil, err
	}
	password, err := GeneratePassword()
	if err != nil {
		return nil, err
	}

	d := &Device{
		OwnerID:  &owner.ID,
		Username: username,
		Password: password,
		Status:   StatusPending,
	}
	if err := e.devices.Create(ctx, d); err != nil {
		return nil, err
	}

	e.logger.Info("device created",
		"device_id", d.ID, "device_username", d.Username, "owner_id", owner.ID)

	return d, nil
}

// Approve activates a pending device. Approving an already-active device
// succeeds without effect.
func (e *Engine) Approve(ctx context.Context, deviceID string) error {
	if err := e.devices.Approve(ctx, deviceID); err != nil {
		return err
	}
	e.logger.Info("device approved", "device_id", deviceID)
	return nil
}

// Delete removes a device permanently.
func (e *Engine) Delete(ctx context.Context, deviceID string) error {
	if err := e.devices.Delete(ctx, deviceID); err != nil {
		return err
	}
	e.logger.Info("device deleted", "device_id", deviceID)
	return nil
}

// Transfer assigns a device to a new owner. The target must exist and have
// the agent role; on any validation failure the device's current ownership
// is left untouched. Status is unaffected.
func (e *Engine) Transfer(ctx context.Context, deviceID, targetUserID string) error {
	target, err := e.users.GetByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if target.Role != auth.RoleAgent {
		return auth.ErrNotAnAgent
	}

	if err := e.devices.UpdateOwner(ctx, deviceID, &target.ID); err != nil {
		return err
	}

	e.logger.Info("device transferred",
		"device_id", deviceID, "new_owner_id", target.ID)
	return nil
}

// Release clears a device's ownership, leaving it unowned. Status is
// unaffected.
func (e *Engine) Release(ctx context.Context, deviceID string) error {
	if err := e.devices.UpdateOwner(ctx, deviceID, nil); err != nil {
		return err
	}
	e.logger.Info("device ownership released", "device_id", deviceID)
	return nil
}

// ImportResult reports the outcome of a CSV import batch.
type ImportResult struct {
	Imported  int      `json:"imported"`
	Succeeded []string `json:"succeeded,omitempty"`
}

// Import validates and inserts a CSV batch of credential pairs as unowned
// active devices.
//
// Validation is all-or-nothing: a *ValidationError rejects the batch before
// anything is stored. A storage failure mid-batch returns ErrPartialImport
// with the result listing the usernames that did get in — those rows are
// not rolled back.
func (e *Engine) Import(ctx context.Context, raw string) (*ImportResult, error) {
	rows, err := ParseImport(raw)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	for _, row := range rows {
		d := &Device{
			Username: row.Username,
			Password: row.Password,
			Status:   StatusActive,
		}
		if err := e.devices.Create(ctx, d); err != nil {
			e.logger.Error("device import aborted",
				"failed_username", row.Username, "imported", res.Imported, "error", err)
			return res, fmt.Errorf("inserting %q: %w", row.Username, ErrPartialImport)
		}
		res.Imported++
		res.Succeeded = append(res.Succeeded, row.Username)
		importedTotal.Inc()
	}

	e.logger.Info("devices imported", "count", res.Imported)
	return res, nil
}

// ListForOwner returns the devices owned by the given user, newest first.
func (e *Engine) ListForOwner(ctx context.Context, ownerID string) ([]Device, error) {
	return e.devices.ListByOwner(ctx, ownerID)
}

// ListPending returns all pending devices with owner usernames, oldest first.
func (e *Engine) ListPending(ctx context.Context) ([]WithOwner, error) {
	return e.devices.ListPending(ctx)
}

// ListAll returns every device with owner usernames, newest first.
func (e *Engine) ListAll(ctx context.Context) ([]WithOwner, error) {
	return e.devices.ListAll(ctx)
}
