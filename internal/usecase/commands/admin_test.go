//go:build unit

package commands

import (
	"context"
	"testing"

	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminDeps struct {
	courts   *fakeCourtAdminRepo
	vouchers *fakeVoucherRepo
	users    *fakeUserRepo
	cache    *fakeCacheInvalidator
}

func newAdminCommands(t *testing.T) (AdminCommands, *adminDeps) {
	t.Helper()
	deps := &adminDeps{
		courts:   &fakeCourtAdminRepo{},
		vouchers: newFakeVoucherRepo(),
		users:    newFakeUserRepo(),
		cache:    &fakeCacheInvalidator{},
	}
	cmd := NewAdminCommands(deps.courts, deps.vouchers, deps.users, deps.cache, &fakeTx{})
	return cmd, deps
}

func TestCreateUser(t *testing.T) {
	params := CreateUserParams{
		Email:    "staff@example.com",
		Password: "secret123",
		Name:     "Front Desk",
		Role:     "staff",
	}

	t.Run("stores the account with a verifiable hash", func(t *testing.T) {
		cmd, deps := newAdminCommands(t)

		id, err := cmd.CreateUser(context.Background(), params)
		require.NoError(t, err)

		require.Len(t, deps.users.inserted, 1)
		u := deps.users.inserted[0]
		assert.Equal(t, id, u.ID())
		assert.Equal(t, "staff@example.com", u.Email().String())
		assert.Equal(t, user.RoleStaff, u.Role())
		assert.True(t, u.IsActive())
		assert.NotEqual(t, "secret123", u.PasswordHash(), "password must not be stored raw")
		assert.NoError(t, password.ComparePassword(u.PasswordHash(), "secret123"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		cmd, _ := newAdminCommands(t)
		_, err := cmd.CreateUser(context.Background(), params)
		require.NoError(t, err)

		_, err = cmd.CreateUser(context.Background(), params)
		assertErrIs(t, err, errs.ErrEmailTaken)
	})

	t.Run("invalid role", func(t *testing.T) {
		cmd, deps := newAdminCommands(t)

		bad := params
		bad.Role = "superuser"
		_, err := cmd.CreateUser(context.Background(), bad)
		assertErrIs(t, err, user.ErrInvalidRole)
		assert.Empty(t, deps.users.inserted)
	})

	t.Run("empty password", func(t *testing.T) {
		cmd, _ := newAdminCommands(t)

		bad := params
		bad.Password = ""
		_, err := cmd.CreateUser(context.Background(), bad)
		assertErrIs(t, err, password.ErrInvalidPassword)
	})
}
