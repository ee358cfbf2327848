package repository

import (
	"context"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/infra"
	"shuttlecourt/internal/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts the booking and its occurrences. The court row is locked
// first so concurrent bookings for the same court serialize, and the
// tstzrange exclusion constraint on booking_occurrences rejects any overlap
// that slips past the explicit check.
func (r *BookingRepository) Create(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error {
	const lockCourt = `SELECT id FROM courts WHERE id = $1 FOR UPDATE`

	var courtID uuid.UUID
	if err := tx.QueryRow(ctx, lockCourt, b.CourtID()).Scan(&courtID); err != nil {
		return wrapQueryErr("failed to lock court", err)
	}

	const overlapQuery = `
		SELECT EXISTS (
			SELECT 1 FROM booking_occurrences
			WHERE court_id = $1
			  AND status <> 'cancelled'
			  AND tstzrange(start_at, end_at, '[)') && tstzrange($2::timestamptz, $3::timestamptz, '[)')
		)`

	for _, occ := range b.Occurrences() {
		var clash bool
		err := tx.QueryRow(ctx, overlapQuery, b.CourtID(), occ.Slot().Start(), occ.Slot().End()).Scan(&clash)
		if err != nil {
			return wrapQueryErr("failed to check slot overlap", err)
		}
		if clash {
			return infra.WrapRepoErr(infra.KindConflict, "slot already booked", nil)
		}
	}

	const insertBooking = `
		INSERT INTO bookings (id, court_id, customer_id, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`

	_, err := tx.Exec(ctx, insertBooking,
		b.ID(), b.CourtID(), b.CustomerID(), b.Status().String(), noteOrNil(b.Note()),
	)
	if err != nil {
		return wrapQueryErr("failed to insert booking", err)
	}

	const insertOccurrence = `
		INSERT INTO booking_occurrences (id, booking_id, court_id, start_at, end_at, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`

	for _, occ := range b.Occurrences() {
		_, err := tx.Exec(ctx, insertOccurrence,
			occ.ID(), b.ID(), b.CourtID(), occ.Slot().Start(), occ.Slot().End(), occ.Status().String(), noteOrNil(occ.Note()),
		)
		if err != nil {
			return wrapQueryErr("failed to insert occurrence", err)
		}
	}
	return nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Booking, error) {
	const query = `
		SELECT id, court_id, customer_id, status, note, created_at, updated_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE`

	var (
		bookingID, courtID, customerID uuid.UUID
		status                         string
		note                           *string
		createdAt, updatedAt           time.Time
	)
	err := tx.QueryRow(ctx, query, id).Scan(
		&bookingID, &courtID, &customerID, &status, &note, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to find booking", err)
	}

	occurrences, err := r.listOccurrences(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	return booking.ReconstructBooking(
		bookingID, courtID, customerID,
		booking.Status(status), booking.NewNote(derefStr(note)),
		occurrences, createdAt, updatedAt,
	), nil
}

func (r *BookingRepository) FindOccurrenceForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Occurrence, error) {
	const query = `
		SELECT id, booking_id, court_id, start_at, end_at, status, note, created_at, updated_at
		FROM booking_occurrences
		WHERE id = $1
		FOR UPDATE`

	return scanOccurrence(tx.QueryRow(ctx, query, id))
}

func (r *BookingRepository) SaveStatus(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error {
	const updateBooking = `UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`

	if _, err := tx.Exec(ctx, updateBooking, b.ID(), b.Status().String()); err != nil {
		return wrapQueryErr("failed to update booking status", err)
	}

	// Cancel cascades to scheduled occurrences inside the aggregate; persist
	// whatever each occurrence ended up as.
	const updateOccurrence = `UPDATE booking_occurrences SET status = $2, updated_at = now() WHERE id = $1`

	for _, occ := range b.Occurrences() {
		if _, err := tx.Exec(ctx, updateOccurrence, occ.ID(), occ.Status().String()); err != nil {
			return wrapQueryErr("failed to update occurrence status", err)
		}
	}
	return nil
}

func (r *BookingRepository) SaveOccurrenceStatus(ctx context.Context, tx postgres.DBTX, o *booking.Occurrence) error {
	const query = `UPDATE booking_occurrences SET status = $2, updated_at = now() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, o.ID(), o.Status().String()); err != nil {
		return wrapQueryErr("failed to update occurrence status", err)
	}
	return nil
}

func (r *BookingRepository) ListDueOccurrenceIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT id FROM booking_occurrences
		WHERE status = 'scheduled' AND start_at <= $1
		ORDER BY start_at`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, wrapQueryErr("failed to list due occurrences", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapQueryErr("failed to scan occurrence id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate due occurrences", err)
	}
	return ids, nil
}

func (r *BookingRepository) listOccurrences(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) ([]*booking.Occurrence, error) {
	const query = `
		SELECT id, booking_id, court_id, start_at, end_at, status, note, created_at, updated_at
		FROM booking_occurrences
		WHERE booking_id = $1
		ORDER BY start_at
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, bookingID)
	if err != nil {
		return nil, wrapQueryErr("failed to list occurrences", err)
	}
	defer rows.Close()

	var occurrences []*booking.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate occurrences", err)
	}
	return occurrences, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(row rowScanner) (*booking.Occurrence, error) {
	var (
		id, bookingID, courtID uuid.UUID
		startAt, endAt         time.Time
		status                 string
		note                   *string
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(&id, &bookingID, &courtID, &startAt, &endAt, &status, &note, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapQueryErr("failed to scan occurrence", err)
	}

	slot, err := booking.NewSlot(startAt, endAt)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "stored slot is invalid", err)
	}
	return booking.ReconstructOccurrence(
		id, bookingID, courtID, slot,
		booking.OccurrenceStatus(status), booking.NewNote(derefStr(note)),
		createdAt, updatedAt,
	), nil
}

func noteOrNil(n booking.Note) *string {
	if n.IsEmpty() {
		return nil
	}
	s := n.String()
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
