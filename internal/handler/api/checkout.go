package api

import (
	"net/http"

	reqdto "shuttlecourt/internal/handler/dto/request"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/commands"
	"shuttlecourt/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkout commands.CheckoutCommands
	queries  queries.OrderQueries
}

func NewCheckoutHandler(checkout commands.CheckoutCommands, orderQueries queries.OrderQueries) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, queries: orderQueries}
}

// @Summary Settle a booking's order
// @Description Recompute charges, apply a voucher and place a payment hold
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 200 {object} queries.OrderView
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /bookings/{id}/checkout [post]
func (h *CheckoutHandler) Settle(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.checkout.Settle(c.Request.Context(), commands.SettleParams{
		BookingID:           bookingID,
		VoucherCode:         req.NormalizedCode(),
		IgnoreVoucherErrors: req.IgnoreVoucherErrors,
	})
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errs.Is(err, errs.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errs.Is(err, errs.ErrVoucherNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Voucher not found",
			})
		case errs.Is(err, errs.ErrOrderNotPending):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order has already been settled",
			})
		case errs.Is(err, errs.ErrIneligibleVoucher):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Voucher is not eligible for this order",
			})
		case errs.Is(err, errs.ErrNoMatchingRule):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "No pricing rule covers the booked slot",
			})
		case errs.Is(err, errs.ErrPaymentHoldFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Payment hold could not be created",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Get order for a booking
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.OrderView
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/order [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	view, err := h.queries.GetByBookingID(c.Request.Context(), bookingID)
	if err != nil {
		if errs.Is(err, errs.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Confirm captured payment
// @Description Called once the payment provider reports the hold as captured
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.ConfirmPaymentRequest true "Confirmation request"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/confirm [post]
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req reqdto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.checkout.ConfirmPayment(c.Request.Context(), orderID, req.HoldID); err != nil {
		h.abortPaymentErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel a payment hold
// @Description Voids the hold and reopens the order for another settlement
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.ConfirmPaymentRequest true "Cancellation request"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (h *CheckoutHandler) CancelPayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req reqdto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.checkout.CancelPayment(c.Request.Context(), orderID, req.HoldID); err != nil {
		h.abortPaymentErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CheckoutHandler) abortPaymentErr(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errs.Is(err, errs.ErrPaymentHoldFailed):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Hold does not belong to this order",
		})
	case errs.Is(err, errs.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order is not awaiting payment",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
