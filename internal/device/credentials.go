package device

import (
	"crypto/rand"
	"fmt"
)

// Credential generation parameters.
const (
	suffixLength   = 4
	passwordLength = 16

	suffixCharset   = "abcdefghijklmnopqrstuvwxyz0123456789"
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateUsername derives a device username from the owning agent's
// username: "<agentUsername>_<4-char random suffix>".
//
// The prefix is fixed at creation time; agents cannot be renamed in this
// system, so prefixes never go stale.
func GenerateUsername(agentUsername string) (string, error) {
	suffix, err := randomString(suffixLength, suffixCharset)
	if err != nil {
		return "", fmt.Errorf("generating username suffix: %w", err)
	}
	return agentUsername + "_" + suffix, nil
}

// GeneratePassword creates a random device password.
// Returned in cleartext — device passwords are never hashed.
func GeneratePassword() (string, error) {
	password, err := randomString(passwordLength, passwordCharset)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	return password, nil
}

// randomString builds a string of length n from the charset using crypto/rand.
func randomString(n int, charset string) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b), nil
}
