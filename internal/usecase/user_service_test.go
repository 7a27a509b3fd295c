package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newUserID = "0194f3a0-0000-7000-8000-0000000000a7"

// plainHasher prefixes passwords so tests can read them back.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func newUserServiceFixture(t *testing.T) (*UserService, *memory.UserRepository) {
	t.Helper()

	users := memory.NewUserRepository(memory.SeedUsers("plain:admin-secret"))
	service := NewUserService(users, plainHasher{}, &staticIDGenerator{ids: []string{newUserID}})
	service.now = func() time.Time { return testNow }
	return service, users
}

func TestUserService_Create(t *testing.T) {
	t.Parallel()

	service, _ := newUserServiceFixture(t)
	ctx := context.Background()

	got, err := service.Create(ctx, UserInput{
		Username: "  Editor ",
		Email:    "editor@matchday.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, newUserID, got.ID)
	assert.Equal(t, "editor", got.Username)
	assert.Equal(t, user.RoleKTV, got.Role)
	assert.Equal(t, user.StatusActive, got.Status)
	assert.Equal(t, "plain:correct-horse", got.PasswordHash)

	_, err = service.Create(ctx, UserInput{Username: "editor", Email: "other@matchday.test", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserService_Create_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input UserInput
	}{
		{name: "short password", input: UserInput{Username: "editor", Email: "e@matchday.test", Password: "short"}},
		{name: "bad email", input: UserInput{Username: "editor", Email: "not-an-email", Password: "correct-horse"}},
		{name: "short username", input: UserInput{Username: "ed", Email: "e@matchday.test", Password: "correct-horse"}},
		{name: "unknown role", input: UserInput{Username: "editor", Email: "e@matchday.test", Password: "correct-horse", Role: "owner"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, _ := newUserServiceFixture(t)
			_, err := service.Create(context.Background(), tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUserService_Update_GuardsSelf(t *testing.T) {
	t.Parallel()

	service, _ := newUserServiceFixture(t)
	ctx := context.Background()
	self := user.Principal{UserID: memory.UserIDAdmin, Username: "admin", Role: user.RoleAdmin}

	_, err := service.Update(ctx, self, memory.UserIDAdmin, UserInput{Role: user.RoleKTV})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.Update(ctx, self, memory.UserIDAdmin, UserInput{Status: user.StatusInactive})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := service.Update(ctx, self, memory.UserIDAdmin, UserInput{FullName: "Head Admin", Password: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, "Head Admin", got.FullName)
	assert.Equal(t, "plain:new-password", got.PasswordHash)
	assert.Equal(t, "admin", got.Username)
}

func TestUserService_Delete(t *testing.T) {
	t.Parallel()

	service, users := newUserServiceFixture(t)
	ctx := context.Background()
	admin := user.Principal{UserID: memory.UserIDAdmin, Role: user.RoleAdmin}

	assert.ErrorIs(t, service.Delete(ctx, admin, memory.UserIDAdmin), ErrForbidden)

	created, err := service.Create(ctx, UserInput{Username: "editor", Email: "e@matchday.test", Password: "correct-horse"})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, admin, created.ID))

	_, exists, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, service.Delete(ctx, admin, "bogus"), ErrInvalidInput)
}

func TestUserService_List_FiltersByRole(t *testing.T) {
	t.Parallel()

	service, _ := newUserServiceFixture(t)
	ctx := context.Background()

	_, err := service.Create(ctx, UserInput{Username: "editor", Email: "e@matchday.test", Password: "correct-horse"})
	require.NoError(t, err)

	page, err := service.List(ctx, user.Filter{Role: user.RoleKTV})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, defaultPageLimit, page.Limit)

	_, err = service.List(ctx, user.Filter{Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
