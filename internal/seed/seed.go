package seed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/repositories"
	"github.com/RUFFNER25/sistema-de-certificados/internal/config"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// EnsureAdmin makes sure at least one admin account exists before the server
// starts accepting requests. Idempotent: it does nothing when any admin is
// already present.
//
// The password comes from configuration (ADMIN_PASSWORD). When unset, a
// random one is generated and printed once to the log so the operator can
// record it; there is deliberately no hard-coded default.
func EnsureAdmin(ctx context.Context, dbPool *pgxpool.Pool, cfg *config.Config) error {
	adminRepo := repositories.NewAdminRepository(dbPool)

	count, err := adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin accounts: %w", err)
	}
	if count > 0 {
		logger.Debug().Int64("admins", count).Msg("Admin account already present, skipping seed")
		return nil
	}

	username := cfg.Admin.Username
	password := cfg.Admin.Password
	generated := false
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		generated = true
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Admin{Username: username, PasswordHash: hash}
	if err := adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	if generated {
		logger.Warn().
			Str("username", username).
			Str("password", password).
			Msg("Seeded admin with a generated password; record it now, it will not be shown again")
	} else {
		logger.Info().Str("username", username).Msg("Seeded admin account")
	}

	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
