package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/clock"
	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/queries"
	"shuttlecourt/internal/usecase/shared"

	"github.com/google/uuid"
)

type SettleParams struct {
	BookingID uuid.UUID
	// VoucherCode is optional; empty means no discount attempt.
	VoucherCode string
	// IgnoreVoucherErrors settles without the discount instead of failing
	// when the voucher turns out ineligible.
	IgnoreVoucherErrors bool
}

type CheckoutCommands interface {
	Settle(ctx context.Context, params SettleParams) (*queries.OrderView, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, holdID string) error
	CancelPayment(ctx context.Context, orderID uuid.UUID, holdID string) error
}

type checkoutCommandsImpl struct {
	courts       CourtRepository
	bookings     BookingRepository
	orders       OrderRepository
	vouchers     VoucherRepository
	customers    CustomerDirectory
	payments     PaymentGateway
	notifier     Notifier
	orderQueries queries.OrderQueries
	tx           shared.TxManager
	clock        clock.Clock
	holdTTL      time.Duration
	logger       *slog.Logger
}

func NewCheckoutCommands(
	courts CourtRepository,
	bookings BookingRepository,
	orders OrderRepository,
	vouchers VoucherRepository,
	customers CustomerDirectory,
	payments PaymentGateway,
	notifier Notifier,
	orderQueries queries.OrderQueries,
	tx shared.TxManager,
	clock clock.Clock,
	cfg *config.Config,
	logger *slog.Logger,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		courts:       courts,
		bookings:     bookings,
		orders:       orders,
		vouchers:     vouchers,
		customers:    customers,
		payments:     payments,
		notifier:     notifier,
		orderQueries: orderQueries,
		tx:           tx,
		clock:        clock,
		holdTTL:      cfg.Payment.HoldTTL,
		logger:       logger,
	}
}

// Settle recomputes the court charge from current pricing rules, applies
// the late fee and any voucher discount, freezes the order into
// awaiting-payment and completes the booking's live occurrences, all in one
// transaction. The payment hold is created after commit; if the gateway
// refuses it, a compensating transaction returns the order to pending and
// releases the voucher usage. Occurrences stay completed either way since
// the court time was physically used.
func (c *checkoutCommandsImpl) Settle(ctx context.Context, params SettleParams) (*queries.OrderView, error) {
	now := c.clock.Now()

	var (
		orderID   uuid.UUID
		customer  uuid.UUID
		holdTotal money.Money
	)

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		b, err := c.bookings.FindByIDForUpdate(ctx, tx, params.BookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrBookingNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		o, err := c.orders.FindByBookingForUpdate(ctx, tx, params.BookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if o.Status() != order.StatusPending {
			return errs.Mark(order.ErrNotPending, errs.ErrOrderNotPending)
		}

		courtBase, err := c.recomputeCourtBase(ctx, b)
		if err != nil {
			return err
		}

		// Overdue time runs from the booking's last scheduled end, not per
		// occurrence: a customer holding two slots is only late once the
		// whole booking should have been over.
		overdue := b.OverdueMinutes(now)

		due := courtBase.Sub(o.CourtPaid()).Add(o.ItemsSubtotal()).Add(o.LateFee(overdue))

		discount := money.Money(0)
		var voucherID *uuid.UUID
		if params.VoucherCode != "" {
			discount, voucherID, err = c.applyVoucher(ctx, tx, params, o, due, now)
			if err != nil {
				return err
			}
		}

		if err := o.Settle(courtBase, overdue, discount, voucherID); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.orders.SaveSettlement(ctx, tx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := b.CompleteOccurrences(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if b.Status() != booking.StatusCompleted {
			if err := b.Complete(); err != nil {
				return errs.Mark(err, errs.ErrInvalidTransition)
			}
		}
		if err := c.bookings.SaveStatus(ctx, tx, b); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		for _, occ := range b.Occurrences() {
			if err := c.bookings.SaveOccurrenceStatus(ctx, tx, occ); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		orderID = o.ID()
		customer = o.CustomerID()
		holdTotal = o.Total()
		return nil
	})
	if err != nil {
		return nil, err
	}

	holdID, holdErr := c.payments.CreateHold(ctx, orderID, holdTotal.Int64(), now.Add(c.holdTTL))
	if holdErr != nil {
		c.logger.Warn("payment hold rejected, rolling settlement back",
			slog.String("order_id", orderID.String()),
			slog.String("error", holdErr.Error()),
		)
		if rbErr := c.rollbackSettlement(ctx, orderID); rbErr != nil {
			return nil, rbErr
		}
		return nil, errs.Mark(holdErr, errs.ErrPaymentHoldFailed)
	}

	err = c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		o.AttachHold(holdID)
		if err := c.orders.AttachHold(ctx, tx, o, holdID, now.Add(c.holdTTL)); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.notifier.Notify(ctx, customer, "checkout_settled", map[string]any{
		"order_id": orderID,
		"total":    holdTotal.Int64(),
	})

	return c.orderQueries.GetByID(ctx, orderID)
}

// ConfirmPayment captures the hold and marks the order paid. It is the
// gateway callback target and must stay idempotent: an order already paid
// is reported as an invalid transition, not silently re-captured.
func (c *checkoutCommandsImpl) ConfirmPayment(ctx context.Context, orderID uuid.UUID, holdID string) error {
	var customer uuid.UUID

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if o.PaymentHoldID() == nil || *o.PaymentHoldID() != holdID {
			return errs.Mark(errors.New("hold does not belong to order"), errs.ErrPaymentHoldFailed)
		}
		if err := c.payments.Confirm(ctx, holdID); err != nil {
			return errs.Mark(err, errs.ErrPaymentHoldFailed)
		}
		if err := o.MarkPaid(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.orders.SaveStatus(ctx, tx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		customer = o.CustomerID()
		return nil
	})
	if err != nil {
		return err
	}

	c.notifier.Notify(ctx, customer, "order_paid", map[string]any{
		"order_id": orderID,
	})
	return nil
}

// CancelPayment voids the hold and returns the order to pending so staff can
// settle again, for instance with a different voucher. The voucher usage
// taken at settlement is handed back.
func (c *checkoutCommandsImpl) CancelPayment(ctx context.Context, orderID uuid.UUID, holdID string) error {
	var customer uuid.UUID

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if o.PaymentHoldID() == nil || *o.PaymentHoldID() != holdID {
			return errs.Mark(errors.New("hold does not belong to order"), errs.ErrPaymentHoldFailed)
		}
		hadVoucher := o.VoucherID() != nil
		if err := o.RollbackSettlement(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.orders.SaveSettlement(ctx, tx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if hadVoucher {
			if err := c.vouchers.ReleaseUsage(ctx, tx, orderID); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		customer = o.CustomerID()
		return nil
	})
	if err != nil {
		return err
	}

	// Voiding the hold is best effort; an unused hold lapses on its own.
	if err := c.payments.Cancel(ctx, holdID); err != nil {
		c.logger.Warn("failed to void payment hold",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
	}

	c.notifier.Notify(ctx, customer, "payment_cancelled", map[string]any{
		"order_id": orderID,
	})
	return nil
}

// recomputeCourtBase prices the booking's surviving occurrences against the
// court's current rules; a rule change since booking time settles at the
// current price.
func (c *checkoutCommandsImpl) recomputeCourtBase(ctx context.Context, b *booking.Booking) (money.Money, error) {
	snapshot, err := c.courts.FindByID(ctx, b.CourtID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, errs.ErrCourtNotFound
		}
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	courtEntity, err := snapshot.ToDomain()
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	var total money.Money
	for _, occ := range b.Occurrences() {
		if occ.Status() == booking.OccurrenceCancelled {
			continue
		}
		charge, err := occurrenceCharge(courtEntity, occ.Slot())
		if err != nil {
			return 0, err
		}
		total = total.Add(charge)
	}
	return total, nil
}

func (c *checkoutCommandsImpl) applyVoucher(
	ctx context.Context,
	tx postgres.DBTX,
	params SettleParams,
	o *order.Order,
	due money.Money,
	now time.Time,
) (money.Money, *uuid.UUID, error) {
	ineligible := func(err error) (money.Money, *uuid.UUID, error) {
		if params.IgnoreVoucherErrors {
			c.logger.Info("voucher skipped at checkout",
				slog.String("code", params.VoucherCode),
				slog.String("reason", err.Error()),
			)
			return 0, nil, nil
		}
		return 0, nil, errs.Mark(err, errs.ErrIneligibleVoucher)
	}

	v, err := c.vouchers.FindByCode(ctx, tx, params.VoucherCode)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			if params.IgnoreVoucherErrors {
				return 0, nil, nil
			}
			return 0, nil, errs.ErrVoucherNotFound
		}
		return 0, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	prior, err := c.vouchers.CountRedemptions(ctx, tx, v.ID(), o.CustomerID())
	if err != nil {
		return 0, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	isNew, err := c.customers.IsNewCustomer(ctx, o.CustomerID())
	if err != nil {
		return 0, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	membership, err := c.customers.ActiveMembership(ctx, o.CustomerID())
	if err != nil {
		return 0, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	discount, err := v.Evaluate(voucher.EvalContext{
		Now:              now,
		OrderTotal:       due,
		CustomerID:       o.CustomerID(),
		IsNewCustomer:    isNew,
		MembershipID:     membership,
		PriorRedemptions: prior,
	})
	if err != nil {
		return ineligible(err)
	}

	// The conditional usage update is the concurrency guard: two checkouts
	// racing for the last redemption cannot both get the discount.
	if err := c.vouchers.ConsumeUsage(ctx, tx, v, o.CustomerID(), o.ID()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return ineligible(voucher.ErrUsageExhausted)
		}
		return 0, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	id := v.ID()
	return discount, &id, nil
}

func (c *checkoutCommandsImpl) rollbackSettlement(ctx context.Context, orderID uuid.UUID) error {
	return c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		hadVoucher := o.VoucherID() != nil
		if err := o.RollbackSettlement(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.orders.SaveSettlement(ctx, tx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if hadVoucher {
			if err := c.vouchers.ReleaseUsage(ctx, tx, orderID); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
}
