//go:build unit

package voucher_test

import (
	"testing"
	"time"

	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalNow = time.Date(2025, 6, 2, 19, 30, 0, 0, time.UTC) // Monday evening

type voucherOpt func(*voucher.Voucher)

func newVoucher(t *testing.T, discountType voucher.DiscountType, value int64, percent float64, opts ...voucherOpt) *voucher.Voucher {
	t.Helper()
	v, err := voucher.NewVoucher(
		uuid.New(),
		"SMASH20",
		discountType,
		money.Money(value),
		percent,
		nil,
		money.Money(0),
		evalNow.Add(-24*time.Hour),
		evalNow.Add(24*time.Hour),
		0, 0,
	)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func baseCtx() voucher.EvalContext {
	return voucher.EvalContext{
		Now:        evalNow,
		OrderTotal: money.Money(500_000),
		CustomerID: uuid.New(),
	}
}

func TestNewVoucher(t *testing.T) {
	t.Run("code is normalized and validated", func(t *testing.T) {
		_, err := voucher.NewCode("  smash20 ")
		require.NoError(t, err)

		_, err = voucher.NewCode("no")
		assert.ErrorIs(t, err, voucher.ErrInvalidCode)
	})

	t.Run("percentage bounds enforced", func(t *testing.T) {
		_, err := voucher.NewVoucher(
			uuid.New(), "OVER100", voucher.DiscountPercentage,
			0, 120, nil, 0, evalNow, evalNow.Add(time.Hour), 0, 0,
		)
		assert.ErrorIs(t, err, voucher.ErrInvalidPercent)
	})
}

func TestEvaluateWindowAndMinimum(t *testing.T) {
	t.Run("within window succeeds", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0)
		discount, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
		assert.Equal(t, money.Money(30_000), discount)
	})

	t.Run("inactive", func(t *testing.T) {
		v := voucher.ReconstructVoucher(
			uuid.New(), "SMASH20", voucher.DiscountFixed, money.Money(30_000), 0,
			nil, 0, evalNow.Add(-time.Hour), evalNow.Add(time.Hour),
			0, 0, 0, false, nil, nil, evalNow, evalNow,
		)
		_, err := v.Evaluate(baseCtx())
		assert.ErrorIs(t, err, voucher.ErrInactive)
	})

	t.Run("not yet valid / expired", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0)

		ctx := baseCtx()
		ctx.Now = evalNow.Add(-48 * time.Hour)
		_, err := v.Evaluate(ctx)
		assert.ErrorIs(t, err, voucher.ErrNotYetValid)

		ctx.Now = evalNow.Add(48 * time.Hour)
		_, err = v.Evaluate(ctx)
		assert.ErrorIs(t, err, voucher.ErrExpired)
	})

	t.Run("below minimum order value", func(t *testing.T) {
		v := voucher.ReconstructVoucher(
			uuid.New(), "SMASH20", voucher.DiscountFixed, money.Money(30_000), 0,
			nil, money.Money(600_000), evalNow.Add(-time.Hour), evalNow.Add(time.Hour),
			0, 0, 0, true, nil, nil, evalNow, evalNow,
		)
		_, err := v.Evaluate(baseCtx())
		assert.ErrorIs(t, err, voucher.ErrBelowMinimum)
	})
}

func TestEvaluateUsageLimits(t *testing.T) {
	reconstruct := func(used, limitTotal, limitPerUser int) *voucher.Voucher {
		return voucher.ReconstructVoucher(
			uuid.New(), "SMASH20", voucher.DiscountFixed, money.Money(30_000), 0,
			nil, 0, evalNow.Add(-time.Hour), evalNow.Add(time.Hour),
			used, limitTotal, limitPerUser, true, nil, nil, evalNow, evalNow,
		)
	}

	t.Run("global limit exhausted", func(t *testing.T) {
		_, err := reconstruct(5, 5, 0).Evaluate(baseCtx())
		assert.ErrorIs(t, err, voucher.ErrUsageExhausted)
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		_, err := reconstruct(1_000_000, 0, 0).Evaluate(baseCtx())
		require.NoError(t, err)
	})

	t.Run("per-user limit reached", func(t *testing.T) {
		ctx := baseCtx()
		ctx.PriorRedemptions = 2
		_, err := reconstruct(0, 0, 2).Evaluate(ctx)
		assert.ErrorIs(t, err, voucher.ErrUserLimitReached)
	})
}

func TestEvaluateTimeRules(t *testing.T) {
	monday := time.Monday
	tuesday := time.Tuesday

	t.Run("no time rules means always time-eligible", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0)
		_, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
	})

	t.Run("any matching rule suffices", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddTimeRule(voucher.NewTimeRule(uuid.New(), &tuesday, nil, nil, nil))
			v.AddTimeRule(voucher.NewTimeRule(uuid.New(), &monday, nil, ptr.To(18*60), ptr.To(22*60)))
		})
		_, err := v.Evaluate(baseCtx()) // Monday 19:30
		require.NoError(t, err)
	})

	t.Run("time window outside now", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddTimeRule(voucher.NewTimeRule(uuid.New(), &monday, nil, ptr.To(6*60), ptr.To(12*60)))
		})
		_, err := v.Evaluate(baseCtx())
		assert.ErrorIs(t, err, voucher.ErrTimeRuleMismatch)
	})

	t.Run("specific date matches regardless of weekday rule", func(t *testing.T) {
		date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddTimeRule(voucher.NewTimeRule(uuid.New(), nil, &date, nil, nil))
		})
		_, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
	})

	t.Run("unset fields are wildcards", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddTimeRule(voucher.NewTimeRule(uuid.New(), nil, nil, ptr.To(18*60), nil))
		})
		_, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
	})
}

func TestEvaluateUserRules(t *testing.T) {
	t.Run("new customer flag", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddUserRule(voucher.NewUserRule(uuid.New(), ptr.To(true), nil, nil))
		})

		ctx := baseCtx()
		ctx.IsNewCustomer = true
		_, err := v.Evaluate(ctx)
		require.NoError(t, err)

		ctx.IsNewCustomer = false
		_, err = v.Evaluate(ctx)
		assert.ErrorIs(t, err, voucher.ErrUserRuleMismatch)
	})

	t.Run("membership tier", func(t *testing.T) {
		membershipID := uuid.New()
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddUserRule(voucher.NewUserRule(uuid.New(), nil, &membershipID, nil))
		})

		ctx := baseCtx()
		ctx.MembershipID = &membershipID
		_, err := v.Evaluate(ctx)
		require.NoError(t, err)

		other := uuid.New()
		ctx.MembershipID = &other
		_, err = v.Evaluate(ctx)
		assert.ErrorIs(t, err, voucher.ErrUserRuleMismatch)
	})

	t.Run("explicit allow-list", func(t *testing.T) {
		customerID := uuid.New()
		v := newVoucher(t, voucher.DiscountFixed, 30_000, 0, func(v *voucher.Voucher) {
			v.AddUserRule(voucher.NewUserRule(uuid.New(), nil, nil, []uuid.UUID{customerID}))
		})

		ctx := baseCtx()
		ctx.CustomerID = customerID
		_, err := v.Evaluate(ctx)
		require.NoError(t, err)
	})
}

func TestDiscountComputation(t *testing.T) {
	t.Run("fixed capped at order total", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountFixed, 700_000, 0)
		discount, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
		assert.Equal(t, money.Money(500_000), discount)
	})

	t.Run("percentage capped by max discount", func(t *testing.T) {
		maxDiscount := money.Money(50_000)
		v := voucher.ReconstructVoucher(
			uuid.New(), "SMASH20", voucher.DiscountPercentage, 0, 20,
			&maxDiscount, 0, evalNow.Add(-time.Hour), evalNow.Add(time.Hour),
			0, 0, 0, true, nil, nil, evalNow, evalNow,
		)

		// min(500000 * 20%, 50000) = 50000
		discount, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
		assert.Equal(t, money.Money(50_000), discount)
	})

	t.Run("percentage without cap", func(t *testing.T) {
		v := newVoucher(t, voucher.DiscountPercentage, 0, 20)
		discount, err := v.Evaluate(baseCtx())
		require.NoError(t, err)
		assert.Equal(t, money.Money(100_000), discount)
	})
}
