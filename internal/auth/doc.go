// Package auth provides accounts, sessions, and access control for iskidms.
//
// It contains:
//   - User accounts with two roles: admin and agent
//   - bcrypt password hashing (account passwords only — device credentials
//     live in the device package and are stored in cleartext by requirement)
//   - Opaque, database-backed sessions with expiry and forced invalidation
//   - The access-control gate consulted by every privileged operation
//   - First-run admin seeding and the expired-session sweeper
//
// Sessions are deliberately stored server-side rather than issued as signed
// tokens: an admin-forced password change must invalidate every existing
// session for the affected agent immediately, which requires revocable state.
package auth
