package queries

import (
	"time"

	"github.com/google/uuid"
)

type OccurrenceView struct {
	ID        uuid.UUID  `json:"id"`
	BookingID uuid.UUID  `json:"booking_id"`
	CourtID   uuid.UUID  `json:"court_id"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     time.Time  `json:"end_at"`
	Status    string     `json:"status"`
	Note      *string    `json:"note,omitempty"`
}

type BookingView struct {
	ID          uuid.UUID        `json:"id"`
	CourtID     uuid.UUID        `json:"court_id"`
	CourtName   string           `json:"court_name"`
	CustomerID  uuid.UUID        `json:"customer_id"`
	Status      string           `json:"status"`
	Note        *string          `json:"note,omitempty"`
	Occurrences []OccurrenceView `json:"occurrences"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type OrderLineView struct {
	ID           uuid.UUID `json:"id"`
	OccurrenceID uuid.UUID `json:"occurrence_id"`
	Kind         string    `json:"kind"` // item | service
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity,omitempty"`
	Minutes      int       `json:"minutes,omitempty"`
	UnitPrice    int64     `json:"unit_price"`
	Amount       int64     `json:"amount"`
}

type OrderView struct {
	ID             uuid.UUID       `json:"id"`
	BookingID      uuid.UUID       `json:"booking_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Status         string          `json:"status"`
	CourtBase      int64           `json:"court_base"`
	CourtPaid      int64           `json:"court_paid"`
	CourtRemaining int64           `json:"court_remaining"`
	ItemsSubtotal  int64           `json:"items_subtotal"`
	LateFeePercent float64         `json:"late_fee_percent"`
	LateFeeAmount  int64           `json:"late_fee_amount"`
	DiscountAmount int64           `json:"discount_amount"`
	TotalAmount    int64           `json:"total_amount"`
	OverdueMinutes int             `json:"overdue_minutes"`
	VoucherID      *uuid.UUID      `json:"voucher_id,omitempty"`
	PaymentHoldID  *string         `json:"payment_hold_id,omitempty"`
	Lines          []OrderLineView `json:"lines"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
