package repository

import (
	"context"
	"time"

	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, active, created_at, updated_at`

func (r *UserRepository) Insert(ctx context.Context, tx postgres.DBTX, u *user.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())`

	_, err := tx.Exec(ctx, query,
		u.ID(), u.Email().String(), u.PasswordHash(), u.Name(), string(u.Role()), u.IsActive(),
	)
	if err != nil {
		return wrapQueryErr("failed to insert user", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var (
		id                   uuid.UUID
		email, hash, name    string
		role                 string
		active               bool
		createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&id, &email, &hash, &name, &role, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to find user", err)
	}
	return user.ReconstructUser(
		id, user.Email(email), hash, name, user.Role(role), active, createdAt, updatedAt,
	), nil
}

// CustomerDirectory answers voucher user-rule lookups from the users and
// memberships tables.
type CustomerDirectory struct {
	pool *pgxpool.Pool
}

func NewCustomerDirectory(pool *pgxpool.Pool) *CustomerDirectory {
	return &CustomerDirectory{pool: pool}
}

// IsNewCustomer counts completed bookings: a customer with none behind
// them qualifies for first-visit vouchers.
func (d *CustomerDirectory) IsNewCustomer(ctx context.Context, customerID uuid.UUID) (bool, error) {
	const query = `
		SELECT NOT EXISTS (
			SELECT 1 FROM bookings
			WHERE customer_id = $1 AND status = 'completed'
		)`

	var isNew bool
	if err := d.pool.QueryRow(ctx, query, customerID).Scan(&isNew); err != nil {
		return false, wrapQueryErr("failed to check customer history", err)
	}
	return isNew, nil
}

func (d *CustomerDirectory) ActiveMembership(ctx context.Context, customerID uuid.UUID) (*uuid.UUID, error) {
	const query = `
		SELECT plan_id FROM memberships
		WHERE customer_id = $1 AND starts_at <= now() AND ends_at > now()
		ORDER BY ends_at DESC
		LIMIT 1`

	var planID uuid.UUID
	err := d.pool.QueryRow(ctx, query, customerID).Scan(&planID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapQueryErr("failed to find membership", err)
	}
	return &planID, nil
}
