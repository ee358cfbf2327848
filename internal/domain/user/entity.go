package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInactiveUser = errors.New("user is inactive")
)

type User struct {
	id           uuid.UUID
	email        Email
	passwordHash string
	name         string
	role         Role
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUser(id uuid.UUID, email, passwordHash, name string, role Role) (*User, error) {
	addr, err := NewEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return &User{
		id:           id,
		email:        addr,
		passwordHash: passwordHash,
		name:         strings.TrimSpace(name),
		role:         role,
		active:       true,
	}, nil
}

func ReconstructUser(
	id uuid.UUID,
	email Email,
	passwordHash, name string,
	role Role,
	active bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		name:         name,
		role:         role,
		active:       active,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) CanLogin() error {
	if !u.active {
		return ErrInactiveUser
	}
	return nil
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() Email         { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Name() string         { return u.name }
func (u *User) Role() Role           { return u.role }
func (u *User) IsActive() bool       { return u.active }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

type Email string

func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if _, err := mail.ParseAddress(value); err != nil {
		return Email(""), ErrInvalidEmail
	}
	return Email(value), nil
}

func (e Email) String() string {
	return string(e)
}
