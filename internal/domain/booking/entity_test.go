//go:build unit

package booking_test

import (
	"testing"
	"time"

	"shuttlecourt/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // a Monday

func mustSlot(t *testing.T, startOffset, endOffset time.Duration) booking.Slot {
	t.Helper()
	slot, err := booking.NewSlot(baseTime.Add(startOffset), baseTime.Add(endOffset))
	require.NoError(t, err)
	return slot
}

func newBooking(t *testing.T, slots ...booking.Slot) *booking.Booking {
	t.Helper()
	if len(slots) == 0 {
		slots = []booking.Slot{mustSlot(t, time.Hour, 2*time.Hour)}
	}
	b, err := booking.NewBooking(uuid.New(), uuid.New(), slots, booking.NewNote(""), baseTime)
	require.NoError(t, err)
	return b
}

func TestSlot(t *testing.T) {
	t.Run("start must precede end", func(t *testing.T) {
		_, err := booking.NewSlot(baseTime.Add(time.Hour), baseTime)
		assert.ErrorIs(t, err, booking.ErrInvalidSlot)
	})

	t.Run("minimum duration enforced", func(t *testing.T) {
		_, err := booking.NewSlot(baseTime, baseTime.Add(10*time.Minute))
		assert.ErrorIs(t, err, booking.ErrSlotTooShort)
	})

	t.Run("overlap is half-open", func(t *testing.T) {
		a := mustSlot(t, 0, time.Hour)
		b := mustSlot(t, time.Hour, 2*time.Hour)
		c := mustSlot(t, 30*time.Minute, 90*time.Minute)

		assert.False(t, a.Overlaps(b), "[9,10) and [10,11) must not clash")
		assert.True(t, a.Overlaps(c))
		assert.True(t, c.Overlaps(b))
	})
}

func TestNewBooking(t *testing.T) {
	t.Run("creates scheduled occurrences per slot", func(t *testing.T) {
		b := newBooking(t,
			mustSlot(t, time.Hour, 2*time.Hour),
			mustSlot(t, 24*time.Hour, 25*time.Hour),
		)

		assert.Equal(t, booking.StatusBooked, b.Status())
		require.Len(t, b.Occurrences(), 2)
		for _, o := range b.Occurrences() {
			assert.Equal(t, booking.OccurrenceScheduled, o.Status())
			assert.Equal(t, b.ID(), o.BookingID())
		}
	})

	t.Run("rejects empty slot list", func(t *testing.T) {
		_, err := booking.NewBooking(uuid.New(), uuid.New(), nil, booking.NewNote(""), baseTime)
		assert.ErrorIs(t, err, booking.ErrNoOccurrences)
	})

	t.Run("rejects past slots", func(t *testing.T) {
		slot, err := booking.NewSlot(baseTime.Add(-2*time.Hour), baseTime.Add(-time.Hour))
		require.NoError(t, err)

		_, err = booking.NewBooking(uuid.New(), uuid.New(), []booking.Slot{slot}, booking.NewNote(""), baseTime)
		assert.ErrorIs(t, err, booking.ErrSlotInPast)
	})

	t.Run("rejects mutually overlapping slots", func(t *testing.T) {
		_, err := booking.NewBooking(uuid.New(), uuid.New(), []booking.Slot{
			mustSlot(t, time.Hour, 3*time.Hour),
			mustSlot(t, 2*time.Hour, 4*time.Hour),
		}, booking.NewNote(""), baseTime)
		assert.ErrorIs(t, err, booking.ErrOccurrencesClash)
	})
}

func TestOccurrenceTransitions(t *testing.T) {
	t.Run("scheduled to in-progress to completed", func(t *testing.T) {
		o := newBooking(t).Occurrences()[0]

		require.NoError(t, o.Start())
		assert.Equal(t, booking.OccurrenceInProgress, o.Status())
		require.NoError(t, o.Complete())
		assert.Equal(t, booking.OccurrenceCompleted, o.Status())
	})

	t.Run("walk-in complete from scheduled", func(t *testing.T) {
		o := newBooking(t).Occurrences()[0]
		require.NoError(t, o.Complete())
	})

	t.Run("completing twice is an invalid transition, state unchanged", func(t *testing.T) {
		o := newBooking(t).Occurrences()[0]
		require.NoError(t, o.Complete())

		err := o.Complete()
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.Equal(t, booking.OccurrenceCompleted, o.Status())
	})

	t.Run("a started occurrence cannot be cancelled", func(t *testing.T) {
		o := newBooking(t).Occurrences()[0]
		require.NoError(t, o.Start())

		err := o.Cancel()
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.Equal(t, booking.OccurrenceInProgress, o.Status())
	})

	t.Run("cancelled occurrence releases the slot", func(t *testing.T) {
		o := newBooking(t).Occurrences()[0]
		assert.True(t, o.BlocksSlot())
		require.NoError(t, o.Cancel())
		assert.False(t, o.BlocksSlot())
	})
}

func TestBookingTransitions(t *testing.T) {
	t.Run("cancel only before start", func(t *testing.T) {
		b := newBooking(t)
		require.NoError(t, b.Start())

		err := b.Cancel()
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("cancel releases remaining occurrences", func(t *testing.T) {
		b := newBooking(t,
			mustSlot(t, time.Hour, 2*time.Hour),
			mustSlot(t, 24*time.Hour, 25*time.Hour),
		)

		require.NoError(t, b.Cancel())
		for _, o := range b.Occurrences() {
			assert.Equal(t, booking.OccurrenceCancelled, o.Status())
		}
	})

	t.Run("complete occurrences is idempotent per occurrence", func(t *testing.T) {
		b := newBooking(t,
			mustSlot(t, time.Hour, 2*time.Hour),
			mustSlot(t, 24*time.Hour, 25*time.Hour),
		)
		require.NoError(t, b.Occurrences()[0].Complete())

		require.NoError(t, b.CompleteOccurrences())
		for _, o := range b.Occurrences() {
			assert.Equal(t, booking.OccurrenceCompleted, o.Status())
		}
	})
}

func TestOverdueMinutes(t *testing.T) {
	o := newBooking(t).Occurrences()[0] // ends at baseTime + 2h

	end := baseTime.Add(2 * time.Hour)

	assert.Equal(t, 0, o.OverdueMinutes(end))
	assert.Equal(t, 0, o.OverdueMinutes(end.Add(-time.Minute)))
	assert.Equal(t, 10, o.OverdueMinutes(end.Add(10*time.Minute)))
	assert.Equal(t, 11, o.OverdueMinutes(end.Add(10*time.Minute+30*time.Second)), "partial minutes count in full")
}

func TestScheduledEnd(t *testing.T) {
	b := newBooking(t,
		mustSlot(t, time.Hour, 2*time.Hour),
		mustSlot(t, 24*time.Hour, 25*time.Hour),
	)
	assert.Equal(t, baseTime.Add(25*time.Hour), b.ScheduledEnd())

	require.NoError(t, b.Occurrences()[1].Cancel())
	assert.Equal(t, baseTime.Add(2*time.Hour), b.ScheduledEnd(), "cancelled occurrences do not count")
}

func TestBookingOverdueMinutes(t *testing.T) {
	b := newBooking(t,
		mustSlot(t, time.Hour, 2*time.Hour),
		mustSlot(t, 24*time.Hour, 25*time.Hour),
	)
	end := baseTime.Add(25 * time.Hour)

	assert.Equal(t, 0, b.OverdueMinutes(end), "not overdue while an occurrence is still scheduled to run")
	assert.Equal(t, 0, b.OverdueMinutes(baseTime.Add(3*time.Hour)), "first slot ending does not start the clock")
	assert.Equal(t, 15, b.OverdueMinutes(end.Add(15*time.Minute)))
}
