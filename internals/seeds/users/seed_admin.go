package users

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"pahla_backend/internals/configs"
	"pahla_backend/internals/features/users/auth/service"
	"pahla_backend/internals/logger"
)

// SeedAdminFromEnv creates ADMIN_EMAIL / ADMIN_PASSWORD when both are set.
func SeedAdminFromEnv(ctx context.Context, db *gorm.DB) error {
	email := configs.GetEnv("ADMIN_EMAIL")
	password := configs.GetEnv("ADMIN_PASSWORD")
	log := logger.With("seed")
	if strings.TrimSpace(email) == "" || password == "" {
		log.Info().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	created, err := service.EnsureAdmin(ctx, db, email, configs.GetEnv("ADMIN_NAME", "PAHLA Admin"), password, configs.GetEnv("ADMIN_ROLE", "owner"))
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", email).Msg("admin user created")
	} else {
		log.Info().Str("email", email).Msg("admin user already exists")
	}
	return nil
}
