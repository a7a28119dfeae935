// Package device provides the device-credential lifecycle engine for iskidms.
//
// A device is a managed username/password pair representing a piece of
// external equipment — not a user account. Devices are created pending and
// move one way to active when an admin approves them; there is no
// deactivation path. Ownership by an agent is independent of status: it can
// be null, assigned, or reassigned at any time, and deleting the owning
// agent releases the device instead of deleting it.
//
// Device passwords are generated and stored in cleartext. This is an
// explicit product requirement — the credentials must be readable back to
// administrators — not an oversight.
//
// # Key Types
//
//   - Device: the credential pair with status and optional owner
//   - Engine: lifecycle operations (create, approve, transfer, import)
//   - Repository: SQLite persistence
//
// # Usage
//
//	repo := device.NewRepository(db)
//	engine := device.NewEngine(repo, userRepo, logger)
//
//	created, err := engine.CreateForAgent(ctx, agent.ID, agent.Username)
package device
