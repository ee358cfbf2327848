package repository

import (
	"context"
	"time"

	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoucherRepository struct {
	pool *pgxpool.Pool
}

func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

func (r *VoucherRepository) FindByCode(ctx context.Context, tx postgres.DBTX, code string) (*voucher.Voucher, error) {
	const query = `
		SELECT id, code, discount_type, discount_value, discount_percent, max_discount,
		       min_order_value, start_at, end_at, used_count, usage_limit_total,
		       usage_limit_per_user, active, created_at, updated_at
		FROM vouchers
		WHERE code = $1`

	var (
		id                                   uuid.UUID
		storedCode, discountType             string
		discountValue, minOrderValue         int64
		discountPercent                      float64
		maxDiscount                          *int64
		startAt, endAt, createdAt, updatedAt time.Time
		usedCount, limitTotal, limitPerUser  int
		active                               bool
	)
	err := tx.QueryRow(ctx, query, code).Scan(
		&id, &storedCode, &discountType, &discountValue, &discountPercent, &maxDiscount,
		&minOrderValue, &startAt, &endAt, &usedCount, &limitTotal,
		&limitPerUser, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to find voucher", err)
	}

	timeRules, err := r.listTimeRules(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	userRules, err := r.listUserRules(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var maxDiscountMoney *money.Money
	if maxDiscount != nil {
		m := money.Money(*maxDiscount)
		maxDiscountMoney = &m
	}
	return voucher.ReconstructVoucher(
		id, voucher.Code(storedCode), voucher.DiscountType(discountType),
		money.Money(discountValue), discountPercent, maxDiscountMoney,
		money.Money(minOrderValue), startAt, endAt,
		usedCount, limitTotal, limitPerUser, active,
		timeRules, userRules, createdAt, updatedAt,
	), nil
}

func (r *VoucherRepository) CountRedemptions(ctx context.Context, tx postgres.DBTX, voucherID, customerID uuid.UUID) (int, error) {
	const query = `
		SELECT count(*) FROM voucher_redemptions
		WHERE voucher_id = $1 AND customer_id = $2`

	var count int
	if err := tx.QueryRow(ctx, query, voucherID, customerID).Scan(&count); err != nil {
		return 0, wrapQueryErr("failed to count redemptions", err)
	}
	return count, nil
}

// ConsumeUsage is the concurrency guard for the global usage limit: the
// conditional update only matches while used_count is below the limit, so
// of two racing settlements exactly one gets the last redemption.
func (r *VoucherRepository) ConsumeUsage(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher, customerID, orderID uuid.UUID) error {
	const consume = `
		UPDATE vouchers
		SET used_count = used_count + 1, updated_at = now()
		WHERE id = $1
		  AND (usage_limit_total = 0 OR used_count < usage_limit_total)`

	tag, err := tx.Exec(ctx, consume, v.ID())
	if err != nil {
		return wrapQueryErr("failed to consume voucher usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(infra.KindConflict, "voucher usage exhausted", nil)
	}

	const redeem = `
		INSERT INTO voucher_redemptions (id, voucher_id, customer_id, order_id, created_at)
		VALUES ($1, $2, $3, $4, now())`

	if _, err := tx.Exec(ctx, redeem, uuid.New(), v.ID(), customerID, orderID); err != nil {
		return wrapQueryErr("failed to record redemption", err)
	}
	return nil
}

// ReleaseUsage undoes the redemption recorded for an order when its
// settlement is rolled back or expires.
func (r *VoucherRepository) ReleaseUsage(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID) error {
	const release = `
		UPDATE vouchers
		SET used_count = greatest(used_count - 1, 0), updated_at = now()
		WHERE id = (SELECT voucher_id FROM voucher_redemptions WHERE order_id = $1)`

	if _, err := tx.Exec(ctx, release, orderID); err != nil {
		return wrapQueryErr("failed to release voucher usage", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM voucher_redemptions WHERE order_id = $1`, orderID); err != nil {
		return wrapQueryErr("failed to delete redemption", err)
	}
	return nil
}

func (r *VoucherRepository) Insert(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher) error {
	const insertVoucher = `
		INSERT INTO vouchers (
			id, code, discount_type, discount_value, discount_percent, max_discount,
			min_order_value, start_at, end_at, used_count, usage_limit_total,
			usage_limit_per_user, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`

	var maxDiscount *int64
	if m := v.MaxDiscount(); m != nil {
		val := m.Int64()
		maxDiscount = &val
	}
	_, err := tx.Exec(ctx, insertVoucher,
		v.ID(), v.CodeValue().String(), string(v.Type()),
		v.DiscountValue().Int64(), v.DiscountPercent(), maxDiscount,
		v.MinOrderValue().Int64(), v.StartAt(), v.EndAt(),
		v.UsedCount(), v.UsageLimitTotal(), v.UsageLimitPerUser(), v.IsActive(),
	)
	if err != nil {
		return wrapQueryErr("failed to insert voucher", err)
	}

	const insertTimeRule = `
		INSERT INTO voucher_time_rules (id, voucher_id, day_of_week, specific_date, start_minute, end_minute)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, rule := range v.TimeRules() {
		var day *int
		if d := rule.DayOfWeek(); d != nil {
			dv := int(*d)
			day = &dv
		}
		_, err := tx.Exec(ctx, insertTimeRule,
			rule.ID(), v.ID(), day, rule.SpecificDate(), rule.StartMinute(), rule.EndMinute(),
		)
		if err != nil {
			return wrapQueryErr("failed to insert voucher time rule", err)
		}
	}

	const insertUserRule = `
		INSERT INTO voucher_user_rules (id, voucher_id, new_customer, membership_id, customer_ids)
		VALUES ($1, $2, $3, $4, $5)`

	for _, rule := range v.UserRules() {
		_, err := tx.Exec(ctx, insertUserRule,
			rule.ID(), v.ID(), rule.NewCustomer(), rule.MembershipID(), rule.CustomerIDs(),
		)
		if err != nil {
			return wrapQueryErr("failed to insert voucher user rule", err)
		}
	}
	return nil
}

func (r *VoucherRepository) listTimeRules(ctx context.Context, tx postgres.DBTX, voucherID uuid.UUID) ([]voucher.TimeRule, error) {
	const query = `
		SELECT id, day_of_week, specific_date, start_minute, end_minute
		FROM voucher_time_rules
		WHERE voucher_id = $1`

	rows, err := tx.Query(ctx, query, voucherID)
	if err != nil {
		return nil, wrapQueryErr("failed to list voucher time rules", err)
	}
	defer rows.Close()

	var rules []voucher.TimeRule
	for rows.Next() {
		var (
			id                       uuid.UUID
			dayOfWeek                *int
			specificDate             *time.Time
			startMinute, endMinute   *int
		)
		if err := rows.Scan(&id, &dayOfWeek, &specificDate, &startMinute, &endMinute); err != nil {
			return nil, wrapQueryErr("failed to scan voucher time rule", err)
		}
		var day *time.Weekday
		if dayOfWeek != nil {
			d := time.Weekday(*dayOfWeek)
			day = &d
		}
		rules = append(rules, voucher.NewTimeRule(id, day, specificDate, startMinute, endMinute))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate voucher time rules", err)
	}
	return rules, nil
}

func (r *VoucherRepository) listUserRules(ctx context.Context, tx postgres.DBTX, voucherID uuid.UUID) ([]voucher.UserRule, error) {
	const query = `
		SELECT id, new_customer, membership_id, customer_ids
		FROM voucher_user_rules
		WHERE voucher_id = $1`

	rows, err := tx.Query(ctx, query, voucherID)
	if err != nil {
		return nil, wrapQueryErr("failed to list voucher user rules", err)
	}
	defer rows.Close()

	var rules []voucher.UserRule
	for rows.Next() {
		var (
			id           uuid.UUID
			newCustomer  *bool
			membershipID *uuid.UUID
			customerIDs  []uuid.UUID
		)
		if err := rows.Scan(&id, &newCustomer, &membershipID, &customerIDs); err != nil {
			return nil, wrapQueryErr("failed to scan voucher user rule", err)
		}
		rules = append(rules, voucher.NewUserRule(id, newCustomer, membershipID, customerIDs))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate voucher user rules", err)
	}
	return rules, nil
}
