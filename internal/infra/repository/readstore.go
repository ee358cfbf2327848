package repository

import (
	"context"
	"time"

	"shuttlecourt/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Read stores run plain pool queries; views are built straight from rows
// without going through the domain aggregates.

type BookingReadStore struct {
	pool *pgxpool.Pool
}

func NewBookingReadStore(pool *pgxpool.Pool) *BookingReadStore {
	return &BookingReadStore{pool: pool}
}

const bookingViewQuery = `
	SELECT b.id, b.court_id, c.name, b.customer_id, b.status, b.note, b.created_at, b.updated_at
	FROM bookings b
	JOIN courts c ON c.id = b.court_id`

func (s *BookingReadStore) GetByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := s.pool.QueryRow(ctx, bookingViewQuery+` WHERE b.id = $1`, id)

	view, err := scanBookingView(row)
	if err != nil {
		return nil, wrapQueryErr("failed to get booking", err)
	}
	if err := s.attachOccurrences(ctx, view); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *BookingReadStore) ListByCourtAndDay(ctx context.Context, courtID uuid.UUID, day time.Time) ([]queries.BookingView, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	const query = bookingViewQuery + `
		WHERE b.court_id = $1
		  AND EXISTS (
			SELECT 1 FROM booking_occurrences o
			WHERE o.booking_id = b.id AND o.start_at < $3 AND o.end_at > $2
		  )
		ORDER BY b.created_at`

	return s.listBookings(ctx, query, courtID, dayStart, dayEnd)
}

func (s *BookingReadStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]queries.BookingView, error) {
	const query = bookingViewQuery + `
		WHERE b.customer_id = $1
		ORDER BY b.created_at DESC`

	return s.listBookings(ctx, query, customerID)
}

func (s *BookingReadStore) listBookings(ctx context.Context, query string, args ...any) ([]queries.BookingView, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr("failed to list bookings", err)
	}
	defer rows.Close()

	var views []queries.BookingView
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, wrapQueryErr("failed to scan booking", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate bookings", err)
	}

	for i := range views {
		if err := s.attachOccurrences(ctx, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (s *BookingReadStore) attachOccurrences(ctx context.Context, view *queries.BookingView) error {
	const query = `
		SELECT id, booking_id, court_id, start_at, end_at, status, note
		FROM booking_occurrences
		WHERE booking_id = $1
		ORDER BY start_at`

	rows, err := s.pool.Query(ctx, query, view.ID)
	if err != nil {
		return wrapQueryErr("failed to list occurrences", err)
	}
	defer rows.Close()

	for rows.Next() {
		var occ queries.OccurrenceView
		if err := rows.Scan(&occ.ID, &occ.BookingID, &occ.CourtID, &occ.StartAt, &occ.EndAt, &occ.Status, &occ.Note); err != nil {
			return wrapQueryErr("failed to scan occurrence", err)
		}
		view.Occurrences = append(view.Occurrences, occ)
	}
	return rows.Err()
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var view queries.BookingView
	err := row.Scan(
		&view.ID, &view.CourtID, &view.CourtName, &view.CustomerID,
		&view.Status, &view.Note, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

type OrderReadStore struct {
	pool *pgxpool.Pool
}

func NewOrderReadStore(pool *pgxpool.Pool) *OrderReadStore {
	return &OrderReadStore{pool: pool}
}

func (s *OrderReadStore) GetByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	return s.getOne(ctx, `id = $1`, id)
}

func (s *OrderReadStore) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.OrderView, error) {
	return s.getOne(ctx, `booking_id = $1`, bookingID)
}

func (s *OrderReadStore) getOne(ctx context.Context, where string, arg any) (*queries.OrderView, error) {
	query := `
		SELECT id, booking_id, customer_id, status,
		       court_base, court_paid, late_fee_percent, late_fee_amount,
		       discount_amount, total_amount, overdue_minutes,
		       voucher_id, payment_hold_id, created_at, updated_at
		FROM orders
		WHERE ` + where

	var view queries.OrderView
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&view.ID, &view.BookingID, &view.CustomerID, &view.Status,
		&view.CourtBase, &view.CourtPaid, &view.LateFeePercent, &view.LateFeeAmount,
		&view.DiscountAmount, &view.TotalAmount, &view.OverdueMinutes,
		&view.VoucherID, &view.PaymentHoldID, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to get order", err)
	}
	view.CourtRemaining = view.CourtBase - view.CourtPaid
	if view.CourtRemaining < 0 {
		view.CourtRemaining = 0
	}

	if err := s.attachLines(ctx, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *OrderReadStore) attachLines(ctx context.Context, view *queries.OrderView) error {
	const query = `
		SELECT id, occurrence_id, 'item' AS kind, name, quantity, 0 AS minutes, unit_price, amount, created_at
		FROM order_items
		WHERE order_id = $1
		UNION ALL
		SELECT id, occurrence_id, 'service', name, 0, minutes, hourly_rate, amount, created_at
		FROM order_services
		WHERE order_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, view.ID)
	if err != nil {
		return wrapQueryErr("failed to list order lines", err)
	}
	defer rows.Close()

	var subtotal int64
	for rows.Next() {
		var (
			line      queries.OrderLineView
			createdAt time.Time
		)
		err := rows.Scan(
			&line.ID, &line.OccurrenceID, &line.Kind, &line.Name,
			&line.Quantity, &line.Minutes, &line.UnitPrice, &line.Amount, &createdAt,
		)
		if err != nil {
			return wrapQueryErr("failed to scan order line", err)
		}
		subtotal += line.Amount
		view.Lines = append(view.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return wrapQueryErr("failed to iterate order lines", err)
	}
	view.ItemsSubtotal = subtotal
	return nil
}
