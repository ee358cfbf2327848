package commands

import (
	"context"
	"errors"
	"time"

	"shuttlecourt/internal/domain/court"
	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/pkg/password"
	"shuttlecourt/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidLateFee = errors.New("late fee percent must be in [0, 100]")

// CourtCacheInvalidator drops the cached court snapshot after an admin
// write so the next booking prices against fresh rules.
type CourtCacheInvalidator interface {
	Invalidate(ctx context.Context, courtID uuid.UUID) error
}

type CreateCourtParams struct {
	Name           string
	AreaID         *uuid.UUID
	Status         string
	LateFeePercent float64
}

type CreateRuleParams struct {
	CourtID     uuid.UUID
	Days        []time.Weekday
	StartMinute int
	EndMinute   int
	RatePerHour int64
	Priority    int
}

type VoucherTimeRuleParams struct {
	DayOfWeek    *time.Weekday
	SpecificDate *time.Time
	StartMinute  *int
	EndMinute    *int
}

type VoucherUserRuleParams struct {
	NewCustomer  *bool
	MembershipID *uuid.UUID
	CustomerIDs  []uuid.UUID
}

type CreateVoucherParams struct {
	Code              string
	DiscountType      string
	DiscountValue     int64
	DiscountPercent   float64
	MaxDiscount       *int64
	MinOrderValue     int64
	StartAt           time.Time
	EndAt             time.Time
	UsageLimitTotal   int
	UsageLimitPerUser int
	TimeRules         []VoucherTimeRuleParams
	UserRules         []VoucherUserRuleParams
}

type CreateUserParams struct {
	Email    string
	Password string
	Name     string
	Role     string
}

type AdminCommands interface {
	CreateCourt(ctx context.Context, params CreateCourtParams) (uuid.UUID, error)
	CreatePricingRule(ctx context.Context, params CreateRuleParams) (uuid.UUID, error)
	CreateVoucher(ctx context.Context, params CreateVoucherParams) (uuid.UUID, error)
	CreateUser(ctx context.Context, params CreateUserParams) (uuid.UUID, error)
}

type adminCommandsImpl struct {
	courts   CourtAdminRepository
	vouchers VoucherRepository
	users    UserRepository
	cache    CourtCacheInvalidator
	tx       shared.TxManager
}

func NewAdminCommands(
	courts CourtAdminRepository,
	vouchers VoucherRepository,
	users UserRepository,
	cache CourtCacheInvalidator,
	tx shared.TxManager,
) AdminCommands {
	return &adminCommandsImpl{
		courts:   courts,
		vouchers: vouchers,
		users:    users,
		cache:    cache,
		tx:       tx,
	}
}

func (c *adminCommandsImpl) CreateCourt(ctx context.Context, params CreateCourtParams) (uuid.UUID, error) {
	id := uuid.New()

	// Domain construction validates name and status before anything hits
	// the database.
	if _, err := court.NewCourt(id, params.Name, params.AreaID, court.Status(params.Status)); err != nil {
		return uuid.Nil, err
	}
	if params.LateFeePercent < 0 || params.LateFeePercent > 100 {
		return uuid.Nil, ErrInvalidLateFee
	}

	snapshot := &CourtSnapshot{
		ID:             id,
		Name:           params.Name,
		AreaID:         params.AreaID,
		Status:         params.Status,
		LateFeePercent: params.LateFeePercent,
	}
	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		if err := c.courts.Insert(ctx, tx, snapshot); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (c *adminCommandsImpl) CreatePricingRule(ctx context.Context, params CreateRuleParams) (uuid.UUID, error) {
	id := uuid.New()

	rule, err := court.NewPricingRule(
		id,
		court.NewWeekdays(params.Days...),
		court.TimeOfDay(params.StartMinute),
		court.TimeOfDay(params.EndMinute),
		money.Money(params.RatePerHour),
		params.Priority,
	)
	if err != nil {
		return uuid.Nil, err
	}

	snapshot := PricingRuleSnapshot{
		ID:          id,
		Days:        uint8(rule.Days()),
		StartMinute: rule.Start().Minutes(),
		EndMinute:   rule.End().Minutes(),
		RatePerHour: rule.RatePerHour().Int64(),
		Priority:    rule.Priority(),
	}
	err = c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		if err := c.courts.InsertRule(ctx, tx, params.CourtID, snapshot); err != nil {
			if infra.IsKind(err, infra.KindForeignKeyViolated) {
				return errs.ErrCourtNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := c.cache.Invalidate(ctx, params.CourtID); err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return id, nil
}

// CreateUser provisions a staff or customer account. The password is hashed
// here so the repository only ever sees the bcrypt digest.
func (c *adminCommandsImpl) CreateUser(ctx context.Context, params CreateUserParams) (uuid.UUID, error) {
	hash, err := password.HashPassword(params.Password)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	u, err := user.NewUser(id, params.Email, hash, params.Name, user.Role(params.Role))
	if err != nil {
		return uuid.Nil, err
	}

	err = c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		if err := c.users.Insert(ctx, tx, u); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrEmailTaken)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (c *adminCommandsImpl) CreateVoucher(ctx context.Context, params CreateVoucherParams) (uuid.UUID, error) {
	id := uuid.New()

	var maxDiscount *money.Money
	if params.MaxDiscount != nil {
		m := money.Money(*params.MaxDiscount)
		maxDiscount = &m
	}

	v, err := voucher.NewVoucher(
		id,
		params.Code,
		voucher.DiscountType(params.DiscountType),
		money.Money(params.DiscountValue),
		params.DiscountPercent,
		maxDiscount,
		money.Money(params.MinOrderValue),
		params.StartAt,
		params.EndAt,
		params.UsageLimitTotal,
		params.UsageLimitPerUser,
	)
	if err != nil {
		return uuid.Nil, err
	}
	for _, r := range params.TimeRules {
		v.AddTimeRule(voucher.NewTimeRule(uuid.New(), r.DayOfWeek, r.SpecificDate, r.StartMinute, r.EndMinute))
	}
	for _, r := range params.UserRules {
		v.AddUserRule(voucher.NewUserRule(uuid.New(), r.NewCustomer, r.MembershipID, r.CustomerIDs))
	}

	err = c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		if err := c.vouchers.Insert(ctx, tx, v); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrIneligibleVoucher)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
