package commands

import (
	"context"

	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/pkg/jwt"
	"shuttlecourt/internal/pkg/password"
	"shuttlecourt/internal/usecase/queries"

	"github.com/google/uuid"
)

type AuthCommands interface {
	Login(ctx context.Context, email, rawPassword string) (string, *queries.UserView, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*queries.UserView, error)
}

type authCommandsImpl struct {
	users UserRepository
	jwt   *jwt.Service
}

func NewAuthCommands(users UserRepository, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{users: users, jwt: jwtService}
}

// Login verifies credentials and issues a token. Lookup misses and bad
// passwords both surface as invalid credentials so the response does not
// leak which emails exist.
func (c *authCommandsImpl) Login(ctx context.Context, email, rawPassword string) (string, *queries.UserView, error) {
	u, err := c.users.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", nil, errs.ErrInvalidCredentials
		}
		return "", nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := u.CanLogin(); err != nil {
		return "", nil, errs.Mark(err, errs.ErrInvalidCredentials)
	}
	if err := password.ComparePassword(u.PasswordHash(), rawPassword); err != nil {
		return "", nil, errs.Mark(err, errs.ErrInvalidCredentials)
	}

	token, err := c.jwt.GenerateToken(u.ID(), u.Role())
	if err != nil {
		return "", nil, errs.Wrap(err, "generate token")
	}

	return token, userView(u), nil
}

// CurrentUser resolves the authenticated principal to its profile view. A
// token can outlive its user row, so a missing or deactivated account
// surfaces as not found rather than an internal error.
func (c *authCommandsImpl) CurrentUser(ctx context.Context, userID uuid.UUID) (*queries.UserView, error) {
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := u.CanLogin(); err != nil {
		return nil, errs.Mark(err, errs.ErrUserNotFound)
	}
	return userView(u), nil
}

func userView(u *user.User) *queries.UserView {
	return &queries.UserView{
		ID:        u.ID(),
		Email:     u.Email().String(),
		Name:      u.Name(),
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt(),
	}
}
