package repository

import (
	"context"

	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourtRepository struct {
	pool *pgxpool.Pool
}

func NewCourtRepository(pool *pgxpool.Pool) *CourtRepository {
	return &CourtRepository{pool: pool}
}

func (r *CourtRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.CourtSnapshot, error) {
	const courtQuery = `
		SELECT id, name, area_id, status, late_fee_percent
		FROM courts
		WHERE id = $1`

	var s commands.CourtSnapshot
	err := r.pool.QueryRow(ctx, courtQuery, id).Scan(
		&s.ID, &s.Name, &s.AreaID, &s.Status, &s.LateFeePercent,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to find court", err)
	}

	const rulesQuery = `
		SELECT id, days, start_minute, end_minute, rate_per_hour, priority
		FROM pricing_rules
		WHERE court_id = $1
		ORDER BY priority, start_minute`

	rows, err := r.pool.Query(ctx, rulesQuery, id)
	if err != nil {
		return nil, wrapQueryErr("failed to list pricing rules", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule commands.PricingRuleSnapshot
		if err := rows.Scan(&rule.ID, &rule.Days, &rule.StartMinute, &rule.EndMinute, &rule.RatePerHour, &rule.Priority); err != nil {
			return nil, wrapQueryErr("failed to scan pricing rule", err)
		}
		s.Rules = append(s.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate pricing rules", err)
	}
	return &s, nil
}

type CourtAdminRepository struct{}

func NewCourtAdminRepository() *CourtAdminRepository {
	return &CourtAdminRepository{}
}

func (r *CourtAdminRepository) Insert(ctx context.Context, tx postgres.DBTX, c *commands.CourtSnapshot) error {
	const query = `
		INSERT INTO courts (id, name, area_id, status, late_fee_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`

	if _, err := tx.Exec(ctx, query, c.ID, c.Name, c.AreaID, c.Status, c.LateFeePercent); err != nil {
		return wrapQueryErr("failed to insert court", err)
	}
	return nil
}

func (r *CourtAdminRepository) InsertRule(ctx context.Context, tx postgres.DBTX, courtID uuid.UUID, rule commands.PricingRuleSnapshot) error {
	const query = `
		INSERT INTO pricing_rules (id, court_id, days, start_minute, end_minute, rate_per_hour, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	_, err := tx.Exec(ctx, query,
		rule.ID, courtID, rule.Days, rule.StartMinute, rule.EndMinute, rule.RatePerHour, rule.Priority,
	)
	if err != nil {
		return wrapQueryErr("failed to insert pricing rule", err)
	}
	return nil
}
