package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoOccurrences     = errors.New("booking needs at least one occurrence")
	ErrOccurrencesClash  = errors.New("booking occurrences overlap each other")
)

// Occurrence is one concrete bookable time slot belonging to a booking.
type Occurrence struct {
	id        uuid.UUID
	bookingID uuid.UUID
	courtID   uuid.UUID
	slot      Slot
	status    OccurrenceStatus
	note      Note
	createdAt time.Time
	updatedAt time.Time
}

func ReconstructOccurrence(
	id, bookingID, courtID uuid.UUID,
	slot Slot,
	status OccurrenceStatus,
	note Note,
	createdAt, updatedAt time.Time,
) *Occurrence {
	return &Occurrence{
		id:        id,
		bookingID: bookingID,
		courtID:   courtID,
		slot:      slot,
		status:    status,
		note:      note,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (o *Occurrence) transition(next OccurrenceStatus) error {
	if !o.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: occurrence %s -> %s", ErrInvalidTransition, o.status, next)
	}
	o.status = next
	return nil
}

// Start moves a scheduled occurrence to in-progress (check-in or sweep).
func (o *Occurrence) Start() error {
	return o.transition(OccurrenceInProgress)
}

// Complete finishes a slot; valid from in-progress or scheduled (walk-in).
func (o *Occurrence) Complete() error {
	return o.transition(OccurrenceCompleted)
}

// Cancel only applies to a slot that never started.
func (o *Occurrence) Cancel() error {
	return o.transition(OccurrenceCancelled)
}

// DueToStart reports whether the wall clock entered the slot.
func (o *Occurrence) DueToStart(now time.Time) bool {
	return o.status == OccurrenceScheduled && !now.Before(o.slot.Start())
}

// OverdueMinutes is how many minutes the given instant runs past the
// scheduled end, or 0 when within schedule. Partial minutes count in full.
func (o *Occurrence) OverdueMinutes(now time.Time) int {
	over := now.Sub(o.slot.End())
	if over <= 0 {
		return 0
	}
	minutes := int(over / time.Minute)
	if over%time.Minute != 0 {
		minutes++
	}
	return minutes
}

func (o *Occurrence) BlocksSlot() bool {
	return o.status != OccurrenceCancelled
}

func (o *Occurrence) ID() uuid.UUID            { return o.id }
func (o *Occurrence) BookingID() uuid.UUID     { return o.bookingID }
func (o *Occurrence) CourtID() uuid.UUID       { return o.courtID }
func (o *Occurrence) Slot() Slot               { return o.slot }
func (o *Occurrence) Status() OccurrenceStatus { return o.status }
func (o *Occurrence) Note() Note               { return o.note }
func (o *Occurrence) CreatedAt() time.Time     { return o.createdAt }
func (o *Occurrence) UpdatedAt() time.Time     { return o.updatedAt }

// Booking is one reservation request spanning one or more occurrences.
type Booking struct {
	id          uuid.UUID
	courtID     uuid.UUID
	customerID  uuid.UUID
	status      Status
	note        Note
	occurrences []*Occurrence
	createdAt   time.Time
	updatedAt   time.Time
}

// NewBooking creates a booked reservation with one occurrence per slot.
// Slots are validated against the clock and against each other; conflicts
// with other bookings are the persistence layer's transactional concern.
func NewBooking(
	courtID, customerID uuid.UUID,
	slots []Slot,
	note Note,
	now time.Time,
) (*Booking, error) {
	if len(slots) == 0 {
		return nil, ErrNoOccurrences
	}
	for i, s := range slots {
		if err := s.ValidateNotPast(now); err != nil {
			return nil, err
		}
		for _, other := range slots[i+1:] {
			if s.Overlaps(other) {
				return nil, ErrOccurrencesClash
			}
		}
	}

	b := &Booking{
		id:         uuid.New(),
		courtID:    courtID,
		customerID: customerID,
		status:     StatusBooked,
		note:       note,
	}
	for _, s := range slots {
		b.occurrences = append(b.occurrences, &Occurrence{
			id:        uuid.New(),
			bookingID: b.id,
			courtID:   courtID,
			slot:      s,
			status:    OccurrenceScheduled,
		})
	}
	return b, nil
}

func ReconstructBooking(
	id, courtID, customerID uuid.UUID,
	status Status,
	note Note,
	occurrences []*Occurrence,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		courtID:     courtID,
		customerID:  customerID,
		status:      status,
		note:        note,
		occurrences: occurrences,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (b *Booking) transition(next Status) error {
	if !b.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: booking %s -> %s", ErrInvalidTransition, b.status, next)
	}
	b.status = next
	return nil
}

func (b *Booking) Start() error {
	return b.transition(StatusInProgress)
}

func (b *Booking) Complete() error {
	return b.transition(StatusCompleted)
}

// Cancel rejects bookings that already started; slot release happens by
// cancelling every remaining occurrence.
func (b *Booking) Cancel() error {
	if err := b.transition(StatusCancelled); err != nil {
		return err
	}
	for _, o := range b.occurrences {
		if o.status == OccurrenceScheduled {
			o.status = OccurrenceCancelled
		}
	}
	return nil
}

// CompleteOccurrences finishes all live occurrences at checkout. Occurrences
// already completed are left untouched so checkout stays idempotent at the
// occurrence level.
func (b *Booking) CompleteOccurrences() error {
	for _, o := range b.occurrences {
		if o.status == OccurrenceCompleted || o.status == OccurrenceCancelled {
			continue
		}
		if err := o.Complete(); err != nil {
			return err
		}
	}
	return nil
}

// ScheduledEnd is the latest scheduled end among non-cancelled occurrences;
// overdue time at checkout is measured against it.
func (b *Booking) ScheduledEnd() time.Time {
	var end time.Time
	for _, o := range b.occurrences {
		if o.status == OccurrenceCancelled {
			continue
		}
		if o.slot.End().After(end) {
			end = o.slot.End()
		}
	}
	return end
}

// OverdueMinutes is how many minutes the given instant runs past
// ScheduledEnd, or 0 when within schedule. Partial minutes count in full.
func (b *Booking) OverdueMinutes(now time.Time) int {
	over := now.Sub(b.ScheduledEnd())
	if over <= 0 {
		return 0
	}
	minutes := int(over / time.Minute)
	if over%time.Minute != 0 {
		minutes++
	}
	return minutes
}

func (b *Booking) Occurrence(id uuid.UUID) (*Occurrence, bool) {
	for _, o := range b.occurrences {
		if o.id == id {
			return o, true
		}
	}
	return nil, false
}

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) CourtID() uuid.UUID         { return b.courtID }
func (b *Booking) CustomerID() uuid.UUID      { return b.customerID }
func (b *Booking) Status() Status             { return b.status }
func (b *Booking) Note() Note                 { return b.note }
func (b *Booking) Occurrences() []*Occurrence { return b.occurrences }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }
