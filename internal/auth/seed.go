package auth

import (
	"context"
	"fmt"

	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

// Seed admin credentials. This is an operational bootstrap, not a security
// feature: the password must be rotated in any real deployment.
const (
	seedAdminUsername = "admin"
	seedAdminPassword = "admin123"
)

// SeedAdmin creates the initial admin account on first run if no users exist.
// Returns true if an account was created.
func SeedAdmin(ctx context.Context, userRepo UserRepository, logger *logging.Logger) (bool, error) {
	count, err := userRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return false, nil
	}

	hash, err := HashPassword(seedAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     seedAdminUsername,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("seed admin account created",
		"username", seedAdminUsername,
		"action_required", "change this password immediately",
	)

	return true, nil
}
