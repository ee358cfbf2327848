package request

import (
	"strings"
	"time"

	"shuttlecourt/internal/usecase/commands"

	"github.com/google/uuid"
)

type SlotRequest struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

type CreateBookingRequest struct {
	CourtID uuid.UUID     `json:"court_id" binding:"required"`
	Slots   []SlotRequest `json:"slots" binding:"required,min=1,dive"`
	Note    string        `json:"note,omitempty"`
}

func (r CreateBookingRequest) ToParams(customerID uuid.UUID) commands.CreateBookingParams {
	slots := make([]commands.SlotInput, len(r.Slots))
	for i, s := range r.Slots {
		slots[i] = commands.SlotInput{StartAt: s.StartAt, EndAt: s.EndAt}
	}
	return commands.CreateBookingParams{
		CourtID:    r.CourtID,
		CustomerID: customerID,
		Slots:      slots,
		Note:       strings.TrimSpace(r.Note),
	}
}

type AddItemRequest struct {
	OccurrenceID uuid.UUID `json:"occurrence_id" binding:"required"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
}

type AddServiceRequest struct {
	OccurrenceID uuid.UUID `json:"occurrence_id" binding:"required"`
	ServiceID    uuid.UUID `json:"service_id" binding:"required"`
	Minutes      int       `json:"minutes" binding:"required,min=1"`
}

type CheckoutRequest struct {
	VoucherCode         string `json:"voucher_code,omitempty"`
	IgnoreVoucherErrors bool   `json:"ignore_voucher_errors,omitempty"`
}

func (r CheckoutRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.VoucherCode))
}

type ConfirmPaymentRequest struct {
	HoldID string `json:"hold_id" binding:"required"`
}
