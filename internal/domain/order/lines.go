package order

import (
	"errors"
	"time"

	"shuttlecourt/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDuration = errors.New("service duration must be positive")
)

// Item is a retail line attached to an occurrence. Its amount is frozen at
// attach time; later price-list changes never touch it.
type Item struct {
	id           uuid.UUID
	occurrenceID uuid.UUID
	productID    uuid.UUID
	name         string
	quantity     int
	unitPrice    money.Money
	amount       money.Money
	createdAt    time.Time
}

func NewItem(occurrenceID, productID uuid.UUID, name string, quantity int, unitPrice money.Money) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		id:           uuid.New(),
		occurrenceID: occurrenceID,
		productID:    productID,
		name:         name,
		quantity:     quantity,
		unitPrice:    unitPrice,
		amount:       money.Money(unitPrice.Int64() * int64(quantity)),
	}, nil
}

func ReconstructItem(
	id, occurrenceID, productID uuid.UUID,
	name string,
	quantity int,
	unitPrice, amount money.Money,
	createdAt time.Time,
) *Item {
	return &Item{
		id:           id,
		occurrenceID: occurrenceID,
		productID:    productID,
		name:         name,
		quantity:     quantity,
		unitPrice:    unitPrice,
		amount:       amount,
		createdAt:    createdAt,
	}
}

func (i *Item) ID() uuid.UUID           { return i.id }
func (i *Item) OccurrenceID() uuid.UUID { return i.occurrenceID }
func (i *Item) ProductID() uuid.UUID    { return i.productID }
func (i *Item) Name() string            { return i.name }
func (i *Item) Quantity() int           { return i.quantity }
func (i *Item) UnitPrice() money.Money  { return i.unitPrice }
func (i *Item) Amount() money.Money     { return i.amount }
func (i *Item) CreatedAt() time.Time    { return i.createdAt }

// ServiceLine is an add-on service billed by duration at an hourly rate,
// pro rata by minute, frozen at attach time like retail items.
type ServiceLine struct {
	id           uuid.UUID
	occurrenceID uuid.UUID
	serviceID    uuid.UUID
	name         string
	minutes      int
	hourlyRate   money.Money
	amount       money.Money
	createdAt    time.Time
}

func NewServiceLine(occurrenceID, serviceID uuid.UUID, name string, minutes int, hourlyRate money.Money) (*ServiceLine, error) {
	if minutes <= 0 {
		return nil, ErrInvalidDuration
	}
	return &ServiceLine{
		id:           uuid.New(),
		occurrenceID: occurrenceID,
		serviceID:    serviceID,
		name:         name,
		minutes:      minutes,
		hourlyRate:   hourlyRate,
		amount:       money.Money(hourlyRate.Int64() * int64(minutes) / 60),
	}, nil
}

func ReconstructServiceLine(
	id, occurrenceID, serviceID uuid.UUID,
	name string,
	minutes int,
	hourlyRate, amount money.Money,
	createdAt time.Time,
) *ServiceLine {
	return &ServiceLine{
		id:           id,
		occurrenceID: occurrenceID,
		serviceID:    serviceID,
		name:         name,
		minutes:      minutes,
		hourlyRate:   hourlyRate,
		amount:       amount,
		createdAt:    createdAt,
	}
}

func (s *ServiceLine) ID() uuid.UUID           { return s.id }
func (s *ServiceLine) OccurrenceID() uuid.UUID { return s.occurrenceID }
func (s *ServiceLine) ServiceID() uuid.UUID    { return s.serviceID }
func (s *ServiceLine) Name() string            { return s.name }
func (s *ServiceLine) Minutes() int            { return s.minutes }
func (s *ServiceLine) HourlyRate() money.Money { return s.hourlyRate }
func (s *ServiceLine) Amount() money.Money     { return s.amount }
func (s *ServiceLine) CreatedAt() time.Time    { return s.createdAt }
