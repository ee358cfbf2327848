package order

import (
	"errors"
	"fmt"
	"math"
	"time"

	"shuttlecourt/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPending        = errors.New("order is not pending")
	ErrLineNotFound      = errors.New("order line not found")
	ErrInvalidLateFeePct = errors.New("late fee percentage must be in [0, 100]")
)

// Order is the financial aggregate of one booking. It accumulates line
// items while pending, and freezes into a settlement at checkout.
// Invariant: total = courtRemaining + itemsSubtotal + lateFee - discount,
// floored at zero.
type Order struct {
	id             uuid.UUID
	bookingID      uuid.UUID
	customerID     uuid.UUID
	status         Status
	courtBase      money.Money
	courtPaid      money.Money
	lateFeePercent float64
	lateFeeAmount  money.Money
	discountAmount money.Money
	totalAmount    money.Money
	overdueMinutes int
	voucherID      *uuid.UUID
	paymentHoldID  *string
	items          []*Item
	services       []*ServiceLine
	createdAt      time.Time
	updatedAt      time.Time
}

func NewOrder(bookingID, customerID uuid.UUID, courtBase money.Money, lateFeePercent float64) (*Order, error) {
	if lateFeePercent < 0 || lateFeePercent > 100 {
		return nil, ErrInvalidLateFeePct
	}
	return &Order{
		id:             uuid.New(),
		bookingID:      bookingID,
		customerID:     customerID,
		status:         StatusPending,
		courtBase:      courtBase,
		lateFeePercent: lateFeePercent,
	}, nil
}

func ReconstructOrder(
	id, bookingID, customerID uuid.UUID,
	status Status,
	courtBase, courtPaid money.Money,
	lateFeePercent float64,
	lateFeeAmount, discountAmount, totalAmount money.Money,
	overdueMinutes int,
	voucherID *uuid.UUID,
	paymentHoldID *string,
	items []*Item,
	services []*ServiceLine,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:             id,
		bookingID:      bookingID,
		customerID:     customerID,
		status:         status,
		courtBase:      courtBase,
		courtPaid:      courtPaid,
		lateFeePercent: lateFeePercent,
		lateFeeAmount:  lateFeeAmount,
		discountAmount: discountAmount,
		totalAmount:    totalAmount,
		overdueMinutes: overdueMinutes,
		voucherID:      voucherID,
		paymentHoldID:  paymentHoldID,
		items:          items,
		services:       services,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (o *Order) transition(next Status) error {
	if !o.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: order %s -> %s", ErrInvalidTransition, o.status, next)
	}
	o.status = next
	return nil
}

// AddItem attaches a retail line while the order is still pending.
func (o *Order) AddItem(occurrenceID, productID uuid.UUID, name string, quantity int, unitPrice money.Money) (*Item, error) {
	if o.status != StatusPending {
		return nil, ErrNotPending
	}
	item, err := NewItem(occurrenceID, productID, name, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.items = append(o.items, item)
	return item, nil
}

func (o *Order) AddService(occurrenceID, serviceID uuid.UUID, name string, minutes int, hourlyRate money.Money) (*ServiceLine, error) {
	if o.status != StatusPending {
		return nil, ErrNotPending
	}
	line, err := NewServiceLine(occurrenceID, serviceID, name, minutes, hourlyRate)
	if err != nil {
		return nil, err
	}
	o.services = append(o.services, line)
	return line, nil
}

func (o *Order) RemoveItem(lineID uuid.UUID) (*Item, error) {
	if o.status != StatusPending {
		return nil, ErrNotPending
	}
	for i, item := range o.items {
		if item.id == lineID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return item, nil
		}
	}
	return nil, ErrLineNotFound
}

func (o *Order) RemoveService(lineID uuid.UUID) (*ServiceLine, error) {
	if o.status != StatusPending {
		return nil, ErrNotPending
	}
	for i, line := range o.services {
		if line.id == lineID {
			o.services = append(o.services[:i], o.services[i+1:]...)
			return line, nil
		}
	}
	return nil, ErrLineNotFound
}

// ItemsSubtotal is the running sum of every attached line across all
// occurrences of the booking.
func (o *Order) ItemsSubtotal() money.Money {
	var sum money.Money
	for _, i := range o.items {
		sum = sum.Add(i.amount)
	}
	for _, s := range o.services {
		sum = sum.Add(s.amount)
	}
	return sum
}

func (o *Order) CourtRemaining() money.Money {
	return o.courtBase.Sub(o.courtPaid)
}

// LateFee bills overdue time rounded up to full hours: any partial overage
// still costs a whole hourly increment of courtBase x lateFeePercent.
func (o *Order) LateFee(overdueMinutes int) money.Money {
	if overdueMinutes <= 0 || o.lateFeePercent == 0 {
		return 0
	}
	billedHours := (overdueMinutes + 59) / 60
	fee := float64(o.courtBase.Int64()) * o.lateFeePercent * float64(billedHours) / 100.0
	return money.Money(int64(math.Round(fee)))
}

// Settle freezes the settlement figures and moves the order to
// awaiting-payment. courtBase is the freshly recomputed amount; stale cached
// values never survive checkout.
func (o *Order) Settle(courtBase money.Money, overdueMinutes int, discount money.Money, voucherID *uuid.UUID) error {
	if o.status != StatusPending {
		return fmt.Errorf("%w: settle from %s", ErrInvalidTransition, o.status)
	}
	o.courtBase = courtBase
	o.overdueMinutes = overdueMinutes
	o.lateFeeAmount = o.LateFee(overdueMinutes)
	o.discountAmount = discount
	o.voucherID = voucherID

	due := o.CourtRemaining().Add(o.ItemsSubtotal()).Add(o.lateFeeAmount)
	o.totalAmount = due.Sub(discount)

	return o.transition(StatusAwaitingPayment)
}

func (o *Order) AttachHold(holdID string) {
	o.paymentHoldID = &holdID
}

// RollbackSettlement reverts to pending when the payment hold cannot be
// created; the settlement figures are cleared so a future checkout starts
// from a clean slate.
func (o *Order) RollbackSettlement() error {
	if err := o.transition(StatusPending); err != nil {
		return err
	}
	o.lateFeeAmount = 0
	o.discountAmount = 0
	o.totalAmount = 0
	o.overdueMinutes = 0
	o.voucherID = nil
	o.paymentHoldID = nil
	return nil
}

func (o *Order) MarkPaid() error {
	if err := o.transition(StatusPaid); err != nil {
		return err
	}
	o.courtPaid = o.courtBase
	return nil
}

func (o *Order) Cancel() error {
	return o.transition(StatusCancelled)
}

// Expire times out an unconfirmed payment hold.
func (o *Order) Expire() error {
	if o.status != StatusAwaitingPayment {
		return fmt.Errorf("%w: expire from %s", ErrInvalidTransition, o.status)
	}
	return o.transition(StatusExpired)
}

func (o *Order) HasCapturedPayment() bool {
	return !o.courtPaid.IsZero() || o.status == StatusPaid
}

func (o *Order) ID() uuid.UUID              { return o.id }
func (o *Order) BookingID() uuid.UUID       { return o.bookingID }
func (o *Order) CustomerID() uuid.UUID      { return o.customerID }
func (o *Order) Status() Status             { return o.status }
func (o *Order) CourtBase() money.Money     { return o.courtBase }
func (o *Order) CourtPaid() money.Money     { return o.courtPaid }
func (o *Order) LateFeePercent() float64    { return o.lateFeePercent }
func (o *Order) LateFeeAmount() money.Money { return o.lateFeeAmount }
func (o *Order) Discount() money.Money      { return o.discountAmount }
func (o *Order) Total() money.Money         { return o.totalAmount }
func (o *Order) OverdueMinutes() int        { return o.overdueMinutes }
func (o *Order) VoucherID() *uuid.UUID      { return o.voucherID }
func (o *Order) PaymentHoldID() *string     { return o.paymentHoldID }
func (o *Order) Items() []*Item             { return o.items }
func (o *Order) Services() []*ServiceLine   { return o.services }
func (o *Order) CreatedAt() time.Time       { return o.createdAt }
func (o *Order) UpdatedAt() time.Time       { return o.updatedAt }
