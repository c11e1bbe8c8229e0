// Seeds the initial admin user from SEED_ADMIN_* environment variables.
// Idempotent: an existing user with the configured email is left untouched.
package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authgate/internal/config"
	"authgate/internal/db"
	"authgate/internal/model"
	"authgate/internal/repository"
	"authgate/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.RefreshToken{}); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	users := repository.NewUserRepository(gormDB)
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))

	if existing, err := users.FindByEmail(ctx, email); err == nil && existing != nil {
		log.Info().Str("email", email).Msg("admin user already present, nothing to do")
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal().Err(err).Msg("check admin user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash admin password")
	}

	admin := &model.User{
		FirstName:    cfg.SeedAdminFirstName,
		LastName:     cfg.SeedAdminLastName,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("create admin user")
	}

	log.Info().Uint("id", admin.ID).Str("email", email).Msg("admin user seeded")
}
