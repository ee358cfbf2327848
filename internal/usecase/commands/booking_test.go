//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/pkg/clock"
	"shuttlecourt/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 09:00 UTC.
var testNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

const allWeek = uint8(0x7F)

func testCourtSnapshot(id uuid.UUID) *CourtSnapshot {
	return &CourtSnapshot{
		ID:             id,
		Name:           "Court 1",
		Status:         "active",
		LateFeePercent: 10,
		Rules: []PricingRuleSnapshot{
			{ID: uuid.New(), Days: allWeek, StartMinute: 0, EndMinute: 1440, RatePerHour: 100_000, Priority: 100},
		},
	}
}

type bookingDeps struct {
	courts   *fakeCourtRepo
	bookings *fakeBookingRepo
	orders   *fakeOrderRepo
	notifier *fakeNotifier
	clock    *clock.MockClock
}

func newBookingCommands(t *testing.T, snapshot *CourtSnapshot) (BookingCommands, *bookingDeps) {
	t.Helper()
	deps := &bookingDeps{
		courts:   &fakeCourtRepo{snapshot: snapshot},
		bookings: newFakeBookingRepo(),
		orders:   newFakeOrderRepo(),
		notifier: &fakeNotifier{},
		clock:    clock.NewMockClock(testNow),
	}
	cmd := NewBookingCommands(
		deps.courts, deps.bookings, deps.orders,
		fakeBookingQueries{}, deps.notifier, &fakeTx{}, deps.clock,
	)
	return cmd, deps
}

func futureSlot(startOffset, endOffset time.Duration) SlotInput {
	return SlotInput{StartAt: testNow.Add(startOffset), EndAt: testNow.Add(endOffset)}
}

func TestCreateBooking(t *testing.T) {
	courtID := uuid.New()
	customerID := uuid.New()

	t.Run("creates booking and pending order priced from rules", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))

		view, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    courtID,
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(time.Hour, 3*time.Hour)},
		})
		require.NoError(t, err)
		require.NotNil(t, view)

		require.Len(t, deps.bookings.created, 1)
		b := deps.bookings.created[0]
		assert.Equal(t, booking.StatusBooked, b.Status())
		assert.Len(t, b.Occurrences(), 1)

		require.Len(t, deps.orders.created, 1)
		o := deps.orders.created[0]
		assert.Equal(t, order.StatusPending, o.Status())
		assert.Equal(t, int64(200_000), o.CourtBase().Int64())
		assert.Equal(t, b.ID(), o.BookingID())

		assert.Equal(t, []string{"booking_created"}, deps.notifier.events)
	})

	t.Run("maps repository conflict to slot conflict", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		deps.bookings.createErr = infra.WrapRepoErr(infra.KindConflict, "overlap", nil)

		_, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    courtID,
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(time.Hour, 2*time.Hour)},
		})
		assertErrIs(t, err, errs.ErrSlotConflict)
		assert.Empty(t, deps.orders.created)
	})

	t.Run("rejects court under maintenance", func(t *testing.T) {
		snapshot := testCourtSnapshot(courtID)
		snapshot.Status = "maintenance"
		cmd, _ := newBookingCommands(t, snapshot)

		_, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    courtID,
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(time.Hour, 2*time.Hour)},
		})
		assertErrIs(t, err, errs.ErrCourtUnavailable)
	})

	t.Run("rejects slot outside every pricing rule", func(t *testing.T) {
		snapshot := testCourtSnapshot(courtID)
		snapshot.Rules = []PricingRuleSnapshot{
			{ID: uuid.New(), Days: allWeek, StartMinute: 0, EndMinute: 600, RatePerHour: 100_000, Priority: 100},
		}
		cmd, deps := newBookingCommands(t, snapshot)

		// 10:00-12:00 while rules stop at 10:00.
		_, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    courtID,
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(time.Hour, 3*time.Hour)},
		})
		assertErrIs(t, err, errs.ErrNoMatchingRule)
		assert.Empty(t, deps.bookings.created)
	})

	t.Run("rejects slot in the past", func(t *testing.T) {
		cmd, _ := newBookingCommands(t, testCourtSnapshot(courtID))

		_, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    courtID,
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(-2*time.Hour, -time.Hour)},
		})
		assertErrIs(t, err, errs.ErrInvalidSlot)
	})

	t.Run("unknown court", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, nil)
		deps.courts.err = infra.WrapRepoErr(infra.KindNotFound, "court not found", nil)

		_, err := cmd.Create(context.Background(), CreateBookingParams{
			CourtID:    uuid.New(),
			CustomerID: customerID,
			Slots:      []SlotInput{futureSlot(time.Hour, 2*time.Hour)},
		})
		assertErrIs(t, err, errs.ErrCourtNotFound)
	})
}

func seedBookingWithOrder(t *testing.T, deps *bookingDeps, courtID, customerID uuid.UUID) (*booking.Booking, *order.Order) {
	t.Helper()
	slot, err := booking.NewSlot(testNow.Add(time.Hour), testNow.Add(3*time.Hour))
	require.NoError(t, err)
	b, err := booking.NewBooking(courtID, customerID, []booking.Slot{slot}, booking.NewNote(""), testNow)
	require.NoError(t, err)
	deps.bookings.add(b)

	o, err := order.NewOrder(b.ID(), customerID, 200_000, 10)
	require.NoError(t, err)
	deps.orders.add(o)
	return b, o
}

func TestCancelBooking(t *testing.T) {
	courtID := uuid.New()
	customerID := uuid.New()

	t.Run("owner cancels before start", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, o := seedBookingWithOrder(t, deps, courtID, customerID)

		err := cmd.Cancel(context.Background(), b.ID(), customerID, user.RoleCustomer)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusCancelled, b.Status())
		for _, occ := range b.Occurrences() {
			assert.Equal(t, booking.OccurrenceCancelled, occ.Status())
		}
		assert.Equal(t, order.StatusCancelled, o.Status())
		assert.Equal(t, []string{"booking_cancelled"}, deps.notifier.events)
	})

	t.Run("staff may cancel any booking", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, _ := seedBookingWithOrder(t, deps, courtID, customerID)

		err := cmd.Cancel(context.Background(), b.ID(), uuid.New(), user.RoleStaff)
		assert.NoError(t, err)
	})

	t.Run("other customers are forbidden", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, _ := seedBookingWithOrder(t, deps, courtID, customerID)

		err := cmd.Cancel(context.Background(), b.ID(), uuid.New(), user.RoleCustomer)
		assertErrIs(t, err, ErrForbidden)
		assert.Equal(t, booking.StatusBooked, b.Status())
	})

	t.Run("started booking cannot be cancelled", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, _ := seedBookingWithOrder(t, deps, courtID, customerID)
		require.NoError(t, b.Start())

		err := cmd.Cancel(context.Background(), b.ID(), customerID, user.RoleCustomer)
		assertErrIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("missing booking", func(t *testing.T) {
		cmd, _ := newBookingCommands(t, testCourtSnapshot(courtID))

		err := cmd.Cancel(context.Background(), uuid.New(), customerID, user.RoleCustomer)
		assertErrIs(t, err, errs.ErrBookingNotFound)
	})
}

func TestCheckIn(t *testing.T) {
	courtID := uuid.New()
	customerID := uuid.New()

	t.Run("moves occurrence and booking to in progress", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, _ := seedBookingWithOrder(t, deps, courtID, customerID)
		occ := b.Occurrences()[0]

		err := cmd.CheckIn(context.Background(), occ.ID())
		require.NoError(t, err)

		assert.Equal(t, booking.OccurrenceInProgress, occ.Status())
		assert.Equal(t, booking.StatusInProgress, b.Status())
	})

	t.Run("double check-in is rejected", func(t *testing.T) {
		cmd, deps := newBookingCommands(t, testCourtSnapshot(courtID))
		b, _ := seedBookingWithOrder(t, deps, courtID, customerID)
		occ := b.Occurrences()[0]

		require.NoError(t, cmd.CheckIn(context.Background(), occ.ID()))
		err := cmd.CheckIn(context.Background(), occ.ID())
		assertErrIs(t, err, errs.ErrInvalidTransition)
	})
}
