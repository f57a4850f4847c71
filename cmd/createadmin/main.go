// Command createadmin seeds the bootstrap administrator account. Safe to run
// repeatedly: an existing user with the same username is left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/agrotrack/livestock_tracker/internal/config"
	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/pkg/db"
)

func main() {
	cfg := config.Load()

	username := config.EnvDefault("ADMIN_USERNAME", "admin")
	email := config.EnvDefault("ADMIN_EMAIL", "admin@localhost")
	password := config.EnvDefault("ADMIN_PASSWORD", "")
	config.MustNonEmpty(password, "ADMIN_PASSWORD")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: gormDB}

	if _, err := gormRepo.GetUserByUsername(ctx, username); err == nil {
		log.Printf("admin user %q already exists, nothing to do", username)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		log.Fatalf("lookup admin user: %v", err)
	}

	hasher := hash.New(cfg.BcryptCost)
	digest, err := hasher.HashPassword(password)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}

	admin := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		FullName:     "System Administrator",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := gormRepo.CreateUser(ctx, admin); err != nil {
		log.Fatalf("create admin user: %v", err)
	}

	log.Printf("admin user %q created", username)
}
