package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the bcrypt work factor for account passwords.
const bcryptCost = 12

// HashPassword hashes a plaintext account password using bcrypt.
//
// Only user account passwords are ever hashed; device credentials are
// generated and stored in cleartext by explicit product requirement.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a bcrypt hash.
// It returns false for any mismatch or malformed hash, never an error —
// callers treat all failures identically to avoid enumeration signals.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
