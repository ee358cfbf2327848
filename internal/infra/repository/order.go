package repository

import (
	"context"
	"time"

	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	const query = `
		INSERT INTO orders (
			id, booking_id, customer_id, status,
			court_base, court_paid, late_fee_percent, late_fee_amount,
			discount_amount, total_amount, overdue_minutes,
			voucher_id, payment_hold_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`

	_, err := tx.Exec(ctx, query,
		o.ID(), o.BookingID(), o.CustomerID(), o.Status().String(),
		o.CourtBase().Int64(), o.CourtPaid().Int64(), o.LateFeePercent(), o.LateFeeAmount().Int64(),
		o.Discount().Int64(), o.Total().Int64(), o.OverdueMinutes(),
		o.VoucherID(), o.PaymentHoldID(),
	)
	if err != nil {
		return wrapQueryErr("failed to insert order", err)
	}
	return nil
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*order.Order, error) {
	return r.findForUpdate(ctx, tx, `id = $1`, id)
}

func (r *OrderRepository) FindByBookingForUpdate(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) (*order.Order, error) {
	return r.findForUpdate(ctx, tx, `booking_id = $1`, bookingID)
}

func (r *OrderRepository) findForUpdate(ctx context.Context, tx postgres.DBTX, where string, arg any) (*order.Order, error) {
	query := `
		SELECT id, booking_id, customer_id, status,
		       court_base, court_paid, late_fee_percent, late_fee_amount,
		       discount_amount, total_amount, overdue_minutes,
		       voucher_id, payment_hold_id, created_at, updated_at
		FROM orders
		WHERE ` + where + `
		FOR UPDATE`

	var (
		id, bookingID, customerID                              uuid.UUID
		status                                                 string
		courtBase, courtPaid, lateFeeAmount, discount, total   int64
		lateFeePercent                                         float64
		overdueMinutes                                         int
		voucherID                                              *uuid.UUID
		paymentHoldID                                          *string
		createdAt, updatedAt                                   time.Time
	)
	err := tx.QueryRow(ctx, query, arg).Scan(
		&id, &bookingID, &customerID, &status,
		&courtBase, &courtPaid, &lateFeePercent, &lateFeeAmount,
		&discount, &total, &overdueMinutes,
		&voucherID, &paymentHoldID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, wrapQueryErr("failed to find order", err)
	}

	items, err := r.listItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	services, err := r.listServices(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		id, bookingID, customerID,
		order.Status(status),
		money.Money(courtBase), money.Money(courtPaid),
		lateFeePercent, money.Money(lateFeeAmount),
		money.Money(discount), money.Money(total),
		overdueMinutes, voucherID, paymentHoldID,
		items, services,
		createdAt, updatedAt,
	), nil
}

func (r *OrderRepository) InsertItem(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, item *order.Item) error {
	const query = `
		INSERT INTO order_items (id, order_id, occurrence_id, product_id, name, quantity, unit_price, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`

	_, err := tx.Exec(ctx, query,
		item.ID(), orderID, item.OccurrenceID(), item.ProductID(),
		item.Name(), item.Quantity(), item.UnitPrice().Int64(), item.Amount().Int64(),
	)
	if err != nil {
		return wrapQueryErr("failed to insert order item", err)
	}
	return nil
}

func (r *OrderRepository) InsertService(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, line *order.ServiceLine) error {
	const query = `
		INSERT INTO order_services (id, order_id, occurrence_id, service_id, name, minutes, hourly_rate, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`

	_, err := tx.Exec(ctx, query,
		line.ID(), orderID, line.OccurrenceID(), line.ServiceID(),
		line.Name(), line.Minutes(), line.HourlyRate().Int64(), line.Amount().Int64(),
	)
	if err != nil {
		return wrapQueryErr("failed to insert order service", err)
	}
	return nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, lineID); err != nil {
		return wrapQueryErr("failed to delete order item", err)
	}
	return nil
}

func (r *OrderRepository) DeleteService(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_services WHERE id = $1`, lineID); err != nil {
		return wrapQueryErr("failed to delete order service", err)
	}
	return nil
}

// SaveSettlement writes every frozen figure in one statement; it also backs
// out a settlement when checkout is rolled back.
func (r *OrderRepository) SaveSettlement(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	const query = `
		UPDATE orders SET
			status = $2, court_base = $3, late_fee_amount = $4,
			discount_amount = $5, total_amount = $6, overdue_minutes = $7,
			voucher_id = $8, payment_hold_id = $9, updated_at = now()
		WHERE id = $1`

	_, err := tx.Exec(ctx, query,
		o.ID(), o.Status().String(), o.CourtBase().Int64(), o.LateFeeAmount().Int64(),
		o.Discount().Int64(), o.Total().Int64(), o.OverdueMinutes(),
		o.VoucherID(), o.PaymentHoldID(),
	)
	if err != nil {
		return wrapQueryErr("failed to save settlement", err)
	}
	return nil
}

func (r *OrderRepository) SaveStatus(ctx context.Context, tx postgres.DBTX, o *order.Order) error {
	const query = `
		UPDATE orders SET status = $2, court_paid = $3, updated_at = now()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, o.ID(), o.Status().String(), o.CourtPaid().Int64()); err != nil {
		return wrapQueryErr("failed to update order status", err)
	}
	return nil
}

func (r *OrderRepository) AttachHold(ctx context.Context, tx postgres.DBTX, o *order.Order, holdID string, expiresAt time.Time) error {
	const query = `
		UPDATE orders SET payment_hold_id = $2, hold_expires_at = $3, updated_at = now()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, o.ID(), holdID, expiresAt); err != nil {
		return wrapQueryErr("failed to attach payment hold", err)
	}
	return nil
}

func (r *OrderRepository) ListExpiredHoldOrderIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT id FROM orders
		WHERE status = 'awaiting_payment' AND hold_expires_at IS NOT NULL AND hold_expires_at <= $1
		ORDER BY hold_expires_at`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, wrapQueryErr("failed to list expired holds", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapQueryErr("failed to scan order id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate expired holds", err)
	}
	return ids, nil
}

func (r *OrderRepository) listItems(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID) ([]*order.Item, error) {
	const query = `
		SELECT id, occurrence_id, product_id, name, quantity, unit_price, amount, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, wrapQueryErr("failed to list order items", err)
	}
	defer rows.Close()

	var items []*order.Item
	for rows.Next() {
		var (
			id, occurrenceID, productID uuid.UUID
			name                        string
			quantity                    int
			unitPrice, amount           int64
			createdAt                   time.Time
		)
		if err := rows.Scan(&id, &occurrenceID, &productID, &name, &quantity, &unitPrice, &amount, &createdAt); err != nil {
			return nil, wrapQueryErr("failed to scan order item", err)
		}
		items = append(items, order.ReconstructItem(
			id, occurrenceID, productID, name, quantity,
			money.Money(unitPrice), money.Money(amount), createdAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate order items", err)
	}
	return items, nil
}

func (r *OrderRepository) listServices(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID) ([]*order.ServiceLine, error) {
	const query = `
		SELECT id, occurrence_id, service_id, name, minutes, hourly_rate, amount, created_at
		FROM order_services
		WHERE order_id = $1
		ORDER BY created_at`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, wrapQueryErr("failed to list order services", err)
	}
	defer rows.Close()

	var services []*order.ServiceLine
	for rows.Next() {
		var (
			id, occurrenceID, serviceID uuid.UUID
			name                        string
			minutes                     int
			hourlyRate, amount          int64
			createdAt                   time.Time
		)
		if err := rows.Scan(&id, &occurrenceID, &serviceID, &name, &minutes, &hourlyRate, &amount, &createdAt); err != nil {
			return nil, wrapQueryErr("failed to scan order service", err)
		}
		services = append(services, order.ReconstructServiceLine(
			id, occurrenceID, serviceID, name, minutes,
			money.Money(hourlyRate), money.Money(amount), createdAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryErr("failed to iterate order services", err)
	}
	return services, nil
}
