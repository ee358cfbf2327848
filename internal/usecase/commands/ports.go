package commands

import (
	"context"
	"time"

	"shuttlecourt/internal/domain/booking"
	"shuttlecourt/internal/domain/court"
	"shuttlecourt/internal/domain/money"
	"shuttlecourt/internal/domain/order"
	"shuttlecourt/internal/domain/user"
	"shuttlecourt/internal/domain/voucher"
	"shuttlecourt/internal/infra/postgres"

	"github.com/google/uuid"
)

// Write-side snapshots keep commands off the read-side query types.
type CourtSnapshot struct {
	ID             uuid.UUID
	Name           string
	AreaID         *uuid.UUID
	Status         string
	LateFeePercent float64
	Rules          []PricingRuleSnapshot
}

type PricingRuleSnapshot struct {
	ID          uuid.UUID
	Days        uint8
	StartMinute int
	EndMinute   int
	RatePerHour int64
	Priority    int
}

// ToDomain rebuilds the court aggregate the pricing resolver works on.
func (s *CourtSnapshot) ToDomain() (*court.Court, error) {
	c, err := court.NewCourt(s.ID, s.Name, s.AreaID, court.Status(s.Status))
	if err != nil {
		return nil, err
	}
	for _, r := range s.Rules {
		rule, err := court.NewPricingRule(
			r.ID,
			court.Weekdays(r.Days),
			court.TimeOfDay(r.StartMinute),
			court.TimeOfDay(r.EndMinute),
			money.Money(r.RatePerHour),
			r.Priority,
		)
		if err != nil {
			return nil, err
		}
		c.AddRule(rule)
	}
	return c, nil
}

type ProductSnapshot struct {
	ID        uuid.UUID
	Name      string
	UnitPrice int64
}

type ServiceSnapshot struct {
	ID         uuid.UUID
	Name       string
	HourlyRate int64
}

type CourtRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CourtSnapshot, error)
}

type CourtAdminRepository interface {
	Insert(ctx context.Context, tx postgres.DBTX, c *CourtSnapshot) error
	InsertRule(ctx context.Context, tx postgres.DBTX, courtID uuid.UUID, r PricingRuleSnapshot) error
}

type BookingRepository interface {
	// Create locks the court row, re-checks slot overlap against every
	// non-cancelled occurrence and inserts the booking with its occurrences;
	// the database exclusion constraint backstops the check.
	Create(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error
	FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Booking, error)
	FindOccurrenceForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*booking.Occurrence, error)
	SaveStatus(ctx context.Context, tx postgres.DBTX, b *booking.Booking) error
	SaveOccurrenceStatus(ctx context.Context, tx postgres.DBTX, o *booking.Occurrence) error
	ListDueOccurrenceIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type OrderRepository interface {
	Create(ctx context.Context, tx postgres.DBTX, o *order.Order) error
	FindByIDForUpdate(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*order.Order, error)
	FindByBookingForUpdate(ctx context.Context, tx postgres.DBTX, bookingID uuid.UUID) (*order.Order, error)
	InsertItem(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, item *order.Item) error
	InsertService(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID, line *order.ServiceLine) error
	DeleteItem(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error
	DeleteService(ctx context.Context, tx postgres.DBTX, lineID uuid.UUID) error
	SaveSettlement(ctx context.Context, tx postgres.DBTX, o *order.Order) error
	SaveStatus(ctx context.Context, tx postgres.DBTX, o *order.Order) error
	AttachHold(ctx context.Context, tx postgres.DBTX, o *order.Order, holdID string, expiresAt time.Time) error
	ListExpiredHoldOrderIDs(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

type VoucherRepository interface {
	FindByCode(ctx context.Context, tx postgres.DBTX, code string) (*voucher.Voucher, error)
	CountRedemptions(ctx context.Context, tx postgres.DBTX, voucherID, customerID uuid.UUID) (int, error)
	// ConsumeUsage increments used_count with a conditional update so two
	// concurrent settlements cannot both pass the limit check.
	ConsumeUsage(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher, customerID, orderID uuid.UUID) error
	ReleaseUsage(ctx context.Context, tx postgres.DBTX, orderID uuid.UUID) error
	Insert(ctx context.Context, tx postgres.DBTX, v *voucher.Voucher) error
}

type ProductCatalog interface {
	FindProduct(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*ProductSnapshot, error)
	FindService(ctx context.Context, tx postgres.DBTX, id uuid.UUID) (*ServiceSnapshot, error)
}

// StockReserver is the inventory collaborator; both calls succeed or signal
// insufficient stock, nothing else about the ledger is the core's business.
type StockReserver interface {
	Reserve(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx postgres.DBTX, productID uuid.UUID, qty int) error
}

// CustomerDirectory is the read-only customer/membership collaborator.
type CustomerDirectory interface {
	IsNewCustomer(ctx context.Context, customerID uuid.UUID) (bool, error)
	ActiveMembership(ctx context.Context, customerID uuid.UUID) (*uuid.UUID, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Insert(ctx context.Context, tx postgres.DBTX, u *user.User) error
}

type PaymentGateway interface {
	CreateHold(ctx context.Context, orderID uuid.UUID, amount int64, expiresAt time.Time) (string, error)
	Confirm(ctx context.Context, holdID string) error
	Cancel(ctx context.Context, holdID string) error
}

// Notifier is fire-and-forget; implementations must never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, customerID uuid.UUID, event string, payload map[string]any)
}
