package auth

// Requirement is the role a server-side operation demands of its caller.
// Every mutating or privileged-read operation declares one explicitly
// instead of scattering inline role comparisons.
type Requirement int

const (
	// RequireAny admits any authenticated user.
	RequireAny Requirement = iota

	// RequireAgent admits only agent accounts.
	RequireAgent

	// RequireAdmin admits only admin accounts.
	RequireAdmin
)

// String returns the requirement name for logging.
func (r Requirement) String() string {
	switch r {
	case RequireAgent:
		return "agent"
	case RequireAdmin:
		return "admin"
	default:
		return "any"
	}
}

// CheckRole compares a caller's role against an operation's requirement.
// A mismatch yields ErrForbidden with no hint of which role would have
// been accepted.
func CheckRole(role Role, req Requirement) error {
	switch req {
	case RequireAdmin:
		if role != RoleAdmin {
			return ErrForbidden
		}
	case RequireAgent:
		if role != RoleAgent {
			return ErrForbidden
		}
	case RequireAny:
		if !IsValidRole(role) {
			return ErrForbidden
		}
	}
	return nil
}
