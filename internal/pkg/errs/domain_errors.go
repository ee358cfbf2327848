package errs

import "errors"

// Sentinel errors shared across usecase layers
var (
	// Court / pricing errors
	ErrCourtNotFound       = errors.New("court not found")
	ErrCourtUnavailable    = errors.New("court is not available for booking")
	ErrNoMatchingRule      = errors.New("no matching pricing rule")
	ErrAmbiguousPricingRule = errors.New("ambiguous pricing rule priority")

	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSlotConflict      = errors.New("slot conflict")
	ErrInvalidSlot       = errors.New("invalid time slot")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Order errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrLineNotFound      = errors.New("order line not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Voucher errors
	ErrVoucherNotFound   = errors.New("voucher not found")
	ErrIneligibleVoucher = errors.New("voucher not eligible")

	// Payment errors
	ErrPaymentHoldFailed = errors.New("payment hold creation failed")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
