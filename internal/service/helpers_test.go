package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/tokens"
)

var testSecret = []byte("test-secret")

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.RevokedToken{}, &models.Shipment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		Repo:   &repo.GormRepo{DB: InitTestDB(t)},
		Hasher: hash.New(bcrypt.MinCost),
		Issuer: &tokens.Issuer{Secret: testSecret, TTL: 24 * time.Hour},
	}
}

func seedUser(t *testing.T, svc *AuthService, username, password, role string, active bool) *models.User {
	t.Helper()

	digest, err := svc.Hasher.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: digest,
		Role:         role,
		Active:       active,
	}
	if err := svc.Repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}
