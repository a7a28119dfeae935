package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Username and password length limits.
const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 6
)

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 3-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) >= minUsernameLength &&
		len(username) <= maxUsernameLength &&
		usernamePattern.MatchString(username)
}

// IsValidPassword checks if an account password meets the minimum length.
func IsValidPassword(password string) bool {
	return len(password) >= minPasswordLength
}

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleAdmin reviews, approves, transfers, imports, and deletes device
	// accounts, and manages agent identities.
	RoleAdmin Role = "admin"

	// RoleAgent is a self-registered user who creates and owns device accounts.
	RoleAgent Role = "agent"
)

// IsValidRole returns true if the role is a known user role.
func IsValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleAgent
}

// User represents an admin or agent account.
//
// The extended profile fields (Company, Email, Phone, ContactPerson) are
// optional and only meaningful for agent accounts.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"` // never serialised
	Role          Role      `json:"role"`
	Company       string    `json:"company,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AgentSummary is an agent account with its computed device count,
// as shown in the admin agent listing.
type AgentSummary struct {
	User
	DeviceCount int `json:"device_count"`
}

// Session is a server-side proof of authentication bound to one user.
// The ID doubles as the bearer token held by the client, so it is never
// serialised in API responses.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session has not yet expired.
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Principal is the resolved identity of the caller: a valid session and the
// account it belongs to. It is attached to the request context by the API
// session middleware.
type Principal struct {
	User    *User
	Session *Session
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrSelfDeletion       = errors.New("cannot delete your own account")
	ErrNotAnAgent         = errors.New("target user is not an agent")
)
