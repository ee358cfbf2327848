package voucher

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"shuttlecourt/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidCode         = errors.New("invalid voucher code format")
	ErrInvalidDiscountType = errors.New("invalid discount type")
	ErrInvalidPercent      = errors.New("percentage must be between 0 and 100")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

// EvalContext carries everything the eligibility checks need; collaborator
// lookups (membership, redemption counts) happen before evaluation.
type EvalContext struct {
	Now              time.Time
	OrderTotal       money.Money
	CustomerID       uuid.UUID
	IsNewCustomer    bool
	MembershipID     *uuid.UUID
	PriorRedemptions int
}

type Voucher struct {
	id                uuid.UUID
	code              Code
	discountType      DiscountType
	discountValue     money.Money
	discountPercent   float64
	maxDiscount       *money.Money
	minOrderValue     money.Money
	startAt           time.Time
	endAt             time.Time
	usedCount         int
	usageLimitTotal   int
	usageLimitPerUser int
	active            bool
	timeRules         []TimeRule
	userRules         []UserRule
	createdAt         time.Time
	updatedAt         time.Time
}

func NewVoucher(
	id uuid.UUID,
	code string,
	discountType DiscountType,
	discountValue money.Money,
	discountPercent float64,
	maxDiscount *money.Money,
	minOrderValue money.Money,
	startAt, endAt time.Time,
	usageLimitTotal, usageLimitPerUser int,
) (*Voucher, error) {
	voucherCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}
	if !discountType.IsValid() {
		return nil, ErrInvalidDiscountType
	}
	if discountType == DiscountPercentage && (discountPercent <= 0 || discountPercent > 100) {
		return nil, ErrInvalidPercent
	}
	return &Voucher{
		id:                id,
		code:              voucherCode,
		discountType:      discountType,
		discountValue:     discountValue,
		discountPercent:   discountPercent,
		maxDiscount:       maxDiscount,
		minOrderValue:     minOrderValue,
		startAt:           startAt,
		endAt:             endAt,
		usageLimitTotal:   usageLimitTotal,
		usageLimitPerUser: usageLimitPerUser,
		active:            true,
	}, nil
}

func ReconstructVoucher(
	id uuid.UUID,
	code Code,
	discountType DiscountType,
	discountValue money.Money,
	discountPercent float64,
	maxDiscount *money.Money,
	minOrderValue money.Money,
	startAt, endAt time.Time,
	usedCount, usageLimitTotal, usageLimitPerUser int,
	active bool,
	timeRules []TimeRule,
	userRules []UserRule,
	createdAt, updatedAt time.Time,
) *Voucher {
	return &Voucher{
		id:                id,
		code:              code,
		discountType:      discountType,
		discountValue:     discountValue,
		discountPercent:   discountPercent,
		maxDiscount:       maxDiscount,
		minOrderValue:     minOrderValue,
		startAt:           startAt,
		endAt:             endAt,
		usedCount:         usedCount,
		usageLimitTotal:   usageLimitTotal,
		usageLimitPerUser: usageLimitPerUser,
		active:            active,
		timeRules:         timeRules,
		userRules:         userRules,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// Evaluate runs the eligibility checks in order, short-circuiting on the
// first failure, and returns the discount on success. The usage counters
// checked here are a snapshot; the persistence layer enforces them again
// with a conditional increment at settlement time.
func (v *Voucher) Evaluate(ctx EvalContext) (money.Money, error) {
	if !v.active {
		return 0, ErrInactive
	}
	if ctx.Now.Before(v.startAt) {
		return 0, ErrNotYetValid
	}
	if ctx.Now.After(v.endAt) {
		return 0, ErrExpired
	}

	if ctx.OrderTotal < v.minOrderValue {
		return 0, ErrBelowMinimum
	}

	if v.usageLimitTotal > 0 && v.usedCount >= v.usageLimitTotal {
		return 0, ErrUsageExhausted
	}
	if v.usageLimitPerUser > 0 && ctx.PriorRedemptions >= v.usageLimitPerUser {
		return 0, ErrUserLimitReached
	}

	if len(v.timeRules) > 0 && !v.anyTimeRuleMatches(ctx.Now) {
		return 0, ErrTimeRuleMismatch
	}
	if len(v.userRules) > 0 && !v.anyUserRuleMatches(ctx) {
		return 0, ErrUserRuleMismatch
	}

	return v.discountFor(ctx.OrderTotal), nil
}

func (v *Voucher) anyTimeRuleMatches(now time.Time) bool {
	for _, r := range v.timeRules {
		if r.Matches(now) {
			return true
		}
	}
	return false
}

func (v *Voucher) anyUserRuleMatches(ctx EvalContext) bool {
	for _, r := range v.userRules {
		if r.Matches(ctx.CustomerID, ctx.IsNewCustomer, ctx.MembershipID) {
			return true
		}
	}
	return false
}

// discountFor caps a fixed discount at the order total and a percentage
// discount at maxDiscount when set.
func (v *Voucher) discountFor(total money.Money) money.Money {
	switch v.discountType {
	case DiscountFixed:
		return money.Min(v.discountValue, total)
	case DiscountPercentage:
		discount := money.Money(int64(math.Round(float64(total.Int64()) * v.discountPercent / 100.0)))
		if v.maxDiscount != nil {
			discount = money.Min(discount, *v.maxDiscount)
		}
		return money.Min(discount, total)
	default:
		return 0
	}
}

func (v *Voucher) AddTimeRule(rule TimeRule) {
	v.timeRules = append(v.timeRules, rule)
}

func (v *Voucher) AddUserRule(rule UserRule) {
	v.userRules = append(v.userRules, rule)
}

func (v *Voucher) ID() uuid.UUID                 { return v.id }
func (v *Voucher) CodeValue() Code               { return v.code }
func (v *Voucher) Type() DiscountType            { return v.discountType }
func (v *Voucher) DiscountValue() money.Money    { return v.discountValue }
func (v *Voucher) DiscountPercent() float64      { return v.discountPercent }
func (v *Voucher) MaxDiscount() *money.Money     { return v.maxDiscount }
func (v *Voucher) MinOrderValue() money.Money    { return v.minOrderValue }
func (v *Voucher) StartAt() time.Time            { return v.startAt }
func (v *Voucher) EndAt() time.Time              { return v.endAt }
func (v *Voucher) UsedCount() int                { return v.usedCount }
func (v *Voucher) UsageLimitTotal() int          { return v.usageLimitTotal }
func (v *Voucher) UsageLimitPerUser() int        { return v.usageLimitPerUser }
func (v *Voucher) IsActive() bool                { return v.active }
func (v *Voucher) TimeRules() []TimeRule         { return v.timeRules }
func (v *Voucher) UserRules() []UserRule         { return v.userRules }
func (v *Voucher) CreatedAt() time.Time          { return v.createdAt }
func (v *Voucher) UpdatedAt() time.Time          { return v.updatedAt }
