package money

import "errors"

var ErrNegativeAmount = errors.New("amount cannot be negative")

// Money is an amount in the smallest unit of the hall currency.
type Money int64

func New(amount int64) (Money, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	return Money(amount), nil
}

func (m Money) Int64() int64 {
	return int64(m)
}

func (m Money) Add(other Money) Money {
	return m + other
}

// Sub floors at zero; order totals are never negative.
func (m Money) Sub(other Money) Money {
	if other >= m {
		return 0
	}
	return m - other
}

func (m Money) IsZero() bool {
	return m == 0
}

func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}
