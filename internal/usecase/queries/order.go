package queries

import (
	"context"

	"github.com/google/uuid"
)

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*OrderView, error)
}
