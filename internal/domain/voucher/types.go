package voucher

import "errors"

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountFixed, DiscountPercentage:
		return true
	default:
		return false
	}
}

// Ineligibility reasons, ordered cheap-first as they are evaluated. Callers
// surface the specific reason, never a generic failure.
var (
	ErrInactive         = errors.New("voucher is inactive")
	ErrNotYetValid      = errors.New("voucher is not yet valid")
	ErrExpired          = errors.New("voucher has expired")
	ErrBelowMinimum     = errors.New("order total below voucher minimum")
	ErrUsageExhausted   = errors.New("voucher usage limit reached")
	ErrUserLimitReached = errors.New("per-user voucher limit reached")
	ErrTimeRuleMismatch = errors.New("no voucher time rule matches")
	ErrUserRuleMismatch = errors.New("no voucher user rule matches")
)
