package commands

import (
	"context"
	"errors"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/court"
	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/clock"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/queries"
	"shuttlecourt/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrForbidden = errors.New("actor may not act on this booking")

type SlotInput struct {
	StartAt time.Time
	EndAt   time.Time
}

type CreateBookingParams struct {
	CourtID    uuid.UUID
	CustomerID uuid.UUID
	Slots      []SlotInput
	Note       string
}

type BookingCommands interface {
	Create(ctx context.Context, params CreateBookingParams) (*queries.BookingView, error)
	Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actorRole user.Role) error
	CheckIn(ctx context.Context, occurrenceID uuid.UUID) error
}

type bookingCommandsImpl struct {
	courts         CourtRepository
	bookings       BookingRepository
	orders         OrderRepository
	bookingQueries queries.BookingQueries
	notifier       Notifier
	tx             shared.TxManager
	clock          clock.Clock
}

func NewBookingCommands(
	courts CourtRepository,
	bookings BookingRepository,
	orders OrderRepository,
	bookingQueries queries.BookingQueries,
	notifier Notifier,
	tx shared.TxManager,
	clock clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		courts:         courts,
		bookings:       bookings,
		orders:         orders,
		bookingQueries: bookingQueries,
		notifier:       notifier,
		tx:             tx,
		clock:          clock,
	}
}

func (c *bookingCommandsImpl) Create(ctx context.Context, params CreateBookingParams) (*queries.BookingView, error) {
	snapshot, err := c.courts.FindByID(ctx, params.CourtID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrCourtNotFound
		}
		return nil, errs.Mark(err, errs.ErrCourtNotFound)
	}
	courtEntity, err := snapshot.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := courtEntity.EnsureBookable(); err != nil {
		return nil, errs.Mark(err, errs.ErrCourtUnavailable)
	}

	slots := make([]booking.Slot, 0, len(params.Slots))
	for _, in := range params.Slots {
		slot, err := booking.NewSlot(in.StartAt, in.EndAt)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrInvalidSlot)
		}
		slots = append(slots, slot)
	}

	bookingEntity, err := booking.NewBooking(
		params.CourtID,
		params.CustomerID,
		slots,
		booking.NewNote(params.Note),
		c.clock.Now(),
	)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidSlot)
	}

	// Pricing every occurrence up front means an unpriceable booking is
	// rejected before anything is written.
	courtBase, err := bookingBaseCharge(courtEntity, bookingEntity)
	if err != nil {
		return nil, err
	}

	orderEntity, err := order.NewOrder(bookingEntity.ID(), params.CustomerID, courtBase, snapshot.LateFeePercent)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	err = c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		if err := c.bookings.Create(ctx, tx, bookingEntity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(err, errs.ErrSlotConflict)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := c.orders.Create(ctx, tx, orderEntity); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.notifier.Notify(ctx, params.CustomerID, "booking_created", map[string]any{
		"booking_id": bookingEntity.ID(),
		"court_id":   params.CourtID,
	})

	return c.bookingQueries.GetByID(ctx, bookingEntity.ID())
}

func (c *bookingCommandsImpl) Cancel(ctx context.Context, bookingID, actorID uuid.UUID, actorRole user.Role) error {
	var customerID uuid.UUID

	err := c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		b, err := c.bookings.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrBookingNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if actorRole == user.RoleCustomer && b.CustomerID() != actorID {
			return ErrForbidden
		}
		customerID = b.CustomerID()

		if err := b.Cancel(); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := c.bookings.SaveStatus(ctx, tx, b); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		o, err := c.orders.FindByBookingForUpdate(ctx, tx, bookingID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		// A captured payment keeps the order; refunds are a manual flow.
		if !o.HasCapturedPayment() && o.Status() == order.StatusPending {
			if err := o.Cancel(); err != nil {
				return errs.Mark(err, errs.ErrInvalidTransition)
			}
			if err := c.orders.SaveStatus(ctx, tx, o); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.notifier.Notify(ctx, customerID, "booking_cancelled", map[string]any{
		"booking_id": bookingID,
	})
	return nil
}

func (c *bookingCommandsImpl) CheckIn(ctx context.Context, occurrenceID uuid.UUID) error {
	return c.tx.Within(ctx, func(ctx context.Context, tx postgres.DBTX) error {
		occ, err := c.bookings.FindOccurrenceForUpdate(ctx, tx, occurrenceID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrBookingNotFound
			}
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

// bookingBaseCharge prices every occurrence against the court's rules; a
// slot crossing midnight cannot be priced against day-scoped rules.
func bookingBaseCharge(c *court.Court, b *booking.Booking) (money.Money, error) {
	var total money.Money
	for _, occ := range b.Occurrences() {
		charge, err := occurrenceCharge(c, occ.Slot())
		if err != nil {
			return 0, err
		}
		total = total.Add(charge)
	}
	return total, nil
}

func occurrenceCharge(c *court.Court, slot booking.Slot) (money.Money, error) {
	start, end := slot.Start(), slot.End()
	from := court.TimeOfDayFrom(start)
	to := court.TimeOfDayFrom(end)

	sameDay := start.Year() == end.Year() && start.YearDay() == end.YearDay()
	endsAtMidnight := to == 0 && end.Sub(start) <= 24*time.Hour
	switch {
	case sameDay:
		// priced below
	case endsAtMidnight:
		to = court.TimeOfDay(24 * 60)
	default:
		return 0, errs.Mark(booking.ErrInvalidSlot, errs.ErrInvalidSlot)
	}

	charge, err := c.SlotCharge(start.Weekday(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, court.ErrNoMatchingRule):
			return 0, errs.Mark(err, errs.ErrNoMatchingRule)
		case errors.Is(err, court.ErrAmbiguousRule):
			return 0, errs.Mark(err, errs.ErrAmbiguousPricingRule)
		default:
			return 0, err
		}
	}
	return charge, nil
}
