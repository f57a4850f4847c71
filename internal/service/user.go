package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrotrack/livestock_tracker/internal/events"
	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/roles"
)

var (
	ErrForbidden  = errors.New("insufficient privileges")
	ErrSelfAction = errors.New("cannot perform this action on your own account")
	ErrBadRole    = errors.New("unknown role")
)

type UserService struct {
	Repo     *repo.GormRepo
	Hasher   *hash.Hasher
	Producer *events.Producer
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     string
}

type UpdateUserInput struct {
	Email    *string
	FullName *string
	Password *string
}

func (s *UserService) Create(ctx context.Context, actor *models.User, in CreateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create", "actor_id", actor.ID)

	if !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return nil, ErrForbidden
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !roles.Valid(role) {
		return nil, ErrBadRole
	}

	digest, err := s.Hasher.HashPassword(in.Password)
	if err != nil {
		l.Error("create_failed", "reason", "hash_error", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		FullName:     in.FullName,
		Role:         role,
		Active:       true,
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			l.Warn("create_failed", "reason", "duplicate", "username", in.Username)
			return nil, repo.ErrConflict
		}
		l.Error("create_failed", "reason", "db_error", "error", err)
		return nil, err
	}

	s.publish(ctx, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_created",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})

	l.Info("user_created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor *models.User, skip, limit int) ([]models.User, error) {
	if !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.Repo.ListUsers(ctx, skip, limit)
}

func (s *UserService) Get(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if actor.ID != id && !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.Repo.GetUserByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, actor *models.User, id uint, in UpdateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.update", "actor_id", actor.ID, "user_id", id)

	if actor.ID != id && !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return nil, ErrForbidden
	}

	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.Repo.GetUserByEmail(ctx, *in.Email); err == nil {
			return nil, repo.ErrConflict
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.Password != nil {
		digest, err := s.Hasher.HashPassword(*in.Password)
		if err != nil {
			l.Error("update_failed", "reason", "hash_error", "error", err)
			return nil, err
		}
		user.PasswordHash = digest
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("update_failed", "reason", "db_error", "error", err)
		return nil, err
	}

	l.Info("user_updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, id uint) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "actor_id", actor.ID, "user_id", id)

	if !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return ErrForbidden
	}
	if actor.ID == id {
		return ErrSelfAction
	}

	if _, err := s.Repo.GetUserByID(ctx, id); err != nil {
		return err
	}

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		l.Error("delete_failed", "error", err)
		return err
	}

	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":    "user_deleted",
		"user_id": id,
	})

	l.Info("user_deleted")
	return nil
}

func (s *UserService) SetActive(ctx context.Context, actor *models.User, id uint, active bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.set_active", "actor_id", actor.ID, "user_id", id)

	if !roles.AtLeast(actor.Role, models.RoleAdmin) {
		return nil, ErrForbidden
	}
	if actor.ID == id && !active {
		return nil, ErrSelfAction
	}

	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = active
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("set_active_failed", "error", err)
		return nil, err
	}

	l.Info("user_state_changed", "active", active)
	return user, nil
}

func (s *UserService) publish(ctx context.Context, key string, event map[string]any) {
	if err := s.Producer.PublishEvent(ctx, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "error", err)
	}
}
