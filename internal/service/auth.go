package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agrotrack/livestock_tracker/internal/events"
	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/tokens"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBadCurrentPassword = errors.New("current password is incorrect")
)

// dummyDigest keeps the credential check from short-circuiting on unknown
// usernames: the bcrypt compare runs either way.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	Repo     *repo.GormRepo
	Hasher   *hash.Hasher
	Issuer   *tokens.Issuer
	Producer *events.Producer
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.CheckPassword(dummyDigest, password)
			l.Warn("login_failed", "reason", "unknown_user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "reason", "db_error", "error", err)
		return nil, err
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "bad_password")
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		l.Warn("login_failed", "reason", "inactive_account")
		return nil, ErrInactiveAccount
	}

	token, exp, err := s.Issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		l.Error("login_failed", "reason", "token_issue", "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Validate runs the session pipeline: revocation list first, then signature
// and expiry, then re-resolution against the user table. Every failure
// collapses into ErrInvalidToken so callers cannot tell which check tripped.
func (s *AuthService) Validate(ctx context.Context, token string) (*models.User, *tokens.AccessClaims, error) {
	revoked, err := s.Repo.TokenRevoked(ctx, token)
	if err != nil || revoked {
		return nil, nil, ErrInvalidToken
	}

	claims, err := tokens.ClaimsFromToken(token, s.Issuer.Secret)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.Repo.GetUserByUsername(ctx, claims.Username)
	if err != nil || !user.Active {
		return nil, nil, ErrInvalidToken
	}

	return user, claims, nil
}

// Logout adds the presented token to the revocation list, keeping its
// original expiry so the sweep can drop the entry once it lapses.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := tokens.ClaimsFromToken(token, s.Issuer.Secret)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.Repo.RevokeToken(ctx, token, claims.ExpiresAt.Time); err != nil {
		l.Error("logout_failed", "error", err)
		return err
	}

	l.Info("logout_successful", "user", claims.Username)
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, current, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", user.ID)

	if !s.Hasher.CheckPassword(user.PasswordHash, current) {
		l.Warn("change_password_failed", "reason", "bad_current_password")
		return ErrBadCurrentPassword
	}

	digest, err := s.Hasher.HashPassword(newPassword)
	if err != nil {
		l.Error("change_password_failed", "reason", "hash_error", "error", err)
		return err
	}

	user.PasswordHash = digest
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("change_password_failed", "reason", "db_error", "error", err)
		return err
	}

	l.Info("password_changed")
	return nil
}

// SweepRevokedTokens drops revocation entries past their natural expiry.
func (s *AuthService) SweepRevokedTokens(ctx context.Context) {
	l := logging.FromContext(ctx).With("svc", "auth.sweep")
	removed, err := s.Repo.SweepRevokedTokens(ctx, time.Now())
	if err != nil {
		l.Error("sweep_failed", "error", err)
		return
	}
	if removed > 0 {
		l.Info("sweep_completed", "removed", removed)
	}
}

func (s *AuthService) publish(ctx context.Context, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "error", err)
	}
}
