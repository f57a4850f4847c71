package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrotrack/livestock_tracker/internal/hash"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
)

func newUserService(t *testing.T) (*UserService, *models.User) {
	t.Helper()

	svc := &UserService{
		Repo:   &repo.GormRepo{DB: InitTestDB(t)},
		Hasher: hash.New(bcrypt.MinCost),
	}

	admin := &models.User{
		Username:     "admin",
		Email:        "admin@x.com",
		PasswordHash: "irrelevant",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	require.NoError(t, svc.Repo.CreateUser(context.Background(), admin))
	return svc, admin
}

func TestCreateUserDefaultsToLowestRole(t *testing.T) {
	svc, admin := newUserService(t)

	user, err := svc.Create(context.Background(), admin, CreateUserInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)
	require.True(t, user.Active)
	require.NotEqual(t, "secret1", user.PasswordHash)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "other@x.com", Password: "secret1",
	})
	require.ErrorIs(t, err, repo.ErrConflict)

	_, err = svc.Create(ctx, admin, CreateUserInput{
		Username: "bob", Email: "alice@x.com", Password: "secret1",
	})
	require.ErrorIs(t, err, repo.ErrConflict)

	users, err := svc.Repo.ListUsers(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, users, 2) // admin + alice only
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	svc, _ := newUserService(t)

	viewer := &models.User{ID: 99, Role: models.RoleSupervisor}
	_, err := svc.Create(context.Background(), viewer, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateUserUnknownRole(t *testing.T) {
	svc, admin := newUserService(t)

	_, err := svc.Create(context.Background(), admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1", Role: "root",
	})
	require.ErrorIs(t, err, ErrBadRole)
}

func TestDeleteUser(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, alice.ID))

	_, err = svc.Repo.GetUserByID(ctx, alice.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeleteSelfForbidden(t *testing.T) {
	svc, admin := newUserService(t)

	err := svc.Delete(context.Background(), admin, admin.ID)
	require.ErrorIs(t, err, ErrSelfAction)

	// the admin row is unchanged
	got, gerr := svc.Repo.GetUserByID(context.Background(), admin.ID)
	require.NoError(t, gerr)
	require.Equal(t, "admin", got.Username)
}

func TestDeactivateSelfForbidden(t *testing.T) {
	svc, admin := newUserService(t)

	_, err := svc.SetActive(context.Background(), admin, admin.ID, false)
	require.ErrorIs(t, err, ErrSelfAction)
}

func TestDeactivateAndReactivate(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	got, err := svc.SetActive(ctx, admin, alice.ID, false)
	require.NoError(t, err)
	require.False(t, got.Active)

	got, err = svc.SetActive(ctx, admin, alice.ID, true)
	require.NoError(t, err)
	require.True(t, got.Active)
}

func TestUpdateUserPermissions(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "bob", Email: "bob@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	name := "Alice A."
	_, err = svc.Update(ctx, bob, alice.ID, UpdateUserInput{FullName: &name})
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Update(ctx, alice, alice.ID, UpdateUserInput{FullName: &name})
	require.NoError(t, err)
	require.Equal(t, name, got.FullName)

	other := "Alice B."
	got, err = svc.Update(ctx, admin, alice.ID, UpdateUserInput{FullName: &other})
	require.NoError(t, err)
	require.Equal(t, other, got.FullName)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	taken := "admin@x.com"
	_, err = svc.Update(ctx, admin, alice.ID, UpdateUserInput{Email: &taken})
	require.ErrorIs(t, err, repo.ErrConflict)
}

func TestUpdateUserPasswordRehashed(t *testing.T) {
	svc, admin := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, admin, CreateUserInput{
		Username: "alice", Email: "alice@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	newPass := "secret2"
	got, err := svc.Update(ctx, alice, alice.ID, UpdateUserInput{Password: &newPass})
	require.NoError(t, err)
	require.NotEqual(t, "secret2", got.PasswordHash)
	require.True(t, svc.Hasher.CheckPassword(got.PasswordHash, "secret2"))
}
