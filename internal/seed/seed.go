package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rollbook/rollbook/internal/app/models"
	"github.com/rollbook/rollbook/internal/app/repositories"
	"github.com/rollbook/rollbook/internal/pkg/auth"
	"github.com/rollbook/rollbook/internal/pkg/logger"
)

const (
	defaultAdminEmail    = "admin@rollbook.local"
	defaultAdminPassword = "ChangeMe_123"
)

// CreateDefaultAdmin ensures an admin account exists so a fresh deployment
// can be bootstrapped. Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD
// when set.
func CreateDefaultAdmin(ctx context.Context, userRepo *repositories.UserRepository) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}

	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if exists {
		logger.Debug().Str("email", email).Msg("Admin account already present, skipping seed")
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:     email,
		Password:  hashed,
		FirstName: "System",
		LastName:  "Admin",
		RoleType:  models.RoleAdmin,
		IsActive:  true,
	}

	if _, err := userRepo.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.Info().Str("email", email).Msg("Default admin account created")
	return nil
}
