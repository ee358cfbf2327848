package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByCourtAndDay(ctx context.Context, courtID uuid.UUID, day time.Time) ([]BookingView, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]BookingView, error)
}
