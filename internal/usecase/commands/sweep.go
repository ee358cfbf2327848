package commands

import (
	"context"
	"log/slog"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/clock"
	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/shared"

	"github.com/google/uuid"
)

// SweepCommands are the scheduler-driven maintenance passes. Both are
// idempotent; an external cron can fire them as often as it likes.
type SweepCommands interface {
	StartDueOccurrences(ctx context.Context) (int, error)
	ExpireOverdueOrders(ctx context.Context) (int, error)
}

type sweepCommandsImpl struct {
	bookings            BookingRepository
	orders              OrderRepository
	vouchers            VoucherRepository
	payments            PaymentGateway
	tx                  shared.TxManager
	clock               clock.Clock
	releaseExpiredSlots bool
	logger              *slog.Logger
}

func NewSweepCommands(
	bookings BookingRepository,
	orders OrderRepository,
	vouchers VoucherRepository,
	payments PaymentGateway,
	tx shared.TxManager,
	clock clock.Clock,
	cfg *config.Config,
	logger *slog.Logger,
) SweepCommands {
	return &sweepCommandsImpl{
		bookings:            bookings,
		orders:              orders,
		vouchers:            vouchers,
		payments:            payments,
		tx:                  tx,
		clock:               clock,
		releaseExpiredSlots: cfg.Checkout.ReleaseExpiredSlots,
		logger:              logger,
	}
}

// StartDueOccurrences flips scheduled occurrences whose start time has
// passed into in-progress. One occurrence failing does not stop the sweep.
func (c *sweepCommandsImpl) StartDueOccurrences(ctx context.Context) (int, error) {
	ids, err := c.bookings.ListDueOccurrenceIDs(ctx, c.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	started := 0
	for _, id := range ids {
		if err := c.startOccurrence(ctx, id); err != nil {
			// Another worker may have started it between list and lock.
			if errs.Is(err, errs.ErrInvalidTransition) {
				continue
			}
			c.logger.Error("occurrence start sweep failed",
				slog.String("occurrence_id", id.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		started++
	}
	return started, nil
}

func (c *sweepCommandsImpl) startOccurrence(ctx context.Context, occurrenceID uuid.UUID) error {
	return c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		occ, err := c.bookings.FindOccurrenceForUpdate(ctx, tx, occurrenceID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := occ.Start(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.bookings.SaveOccurrenceStatus(ctx, tx, occ); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		b, err := c.bookings.FindByIDForUpdate(ctx, tx, occ.BookingID())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if b.Status() == booking.StatusBooked {
			if err := b.Start(); err != nil {
				return errs.Mark(err, errs.ErrInvalidTransition)
			}
			if err := c.bookings.SaveStatus(ctx, tx, b); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
}

// ExpireOverdueOrders times out awaiting-payment orders whose hold lapsed:
// the order expires, any voucher usage is handed back, and the gateway hold
// is cancelled best-effort after commit.
func (c *sweepCommandsImpl) ExpireOverdueOrders(ctx context.Context) (int, error) {
	ids, err := c.orders.ListExpiredHoldOrderIDs(ctx, c.clock.Now())
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	expired := 0
	for _, id := range ids {
		holdID, err := c.expireOrder(ctx, id)
		if err != nil {
			if errs.Is(err, errs.ErrInvalidTransition) {
				continue
			}
			c.logger.Error("order expiry sweep failed",
				slog.String("order_id", id.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		expired++

		if holdID != "" {
			if err := c.payments.Cancel(ctx, holdID); err != nil {
				c.logger.Warn("gateway hold cancel failed, hold will lapse on its own",
					slog.String("order_id", id.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return expired, nil
}

func (c *sweepCommandsImpl) expireOrder(ctx context.Context, orderID uuid.UUID) (string, error) {
	var holdID string

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		o, err := c.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if o.Status() != order.StatusAwaitingPayment {
			return errs.Mark(order.ErrInvalidTransition, errs.ErrInvalidTransition)
		}

		hadVoucher := o.VoucherID() != nil
		if err := o.Expire(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.orders.SaveStatus(ctx, tx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if hadVoucher {
			if err := c.vouchers.ReleaseUsage(ctx, tx, orderID); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		if hold := o.PaymentHoldID(); hold != nil {
			holdID = *hold
		}

		if c.releaseExpiredSlots {
			if err := c.releaseScheduledSlots(ctx, tx, o.BookingID()); err != nil {
				return err
			}
		}
		return nil
	})
	return holdID, err
}

func (c *sweepCommandsImpl) releaseScheduledSlots(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) error {
	b, err := c.bookings.FindByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	for _, occ := range b.Occurrences() {
		if occ.Status() != booking.OccurrenceScheduled {
			continue
		}
		if err := occ.Cancel(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.bookings.SaveOccurrenceStatus(ctx, tx, occ); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	return nil
}
