package api

import (
	"context"
	"net/http"
	"time"

	"shuttlecourt/internal/domain/user"
	reqdto "shuttlecourt/internal/handler/dto/request"
	resdto "shuttlecourt/internal/handler/dto/response"
	"shuttlecourt/internal/handler/middleware"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/commands"
	"shuttlecourt/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookings   commands.BookingCommands
	orderLines commands.OrderLineCommands
	queries    queries.BookingQueries
}

func NewBookingHandler(
	bookings commands.BookingCommands,
	orderLines commands.OrderLineCommands,
	bookingQueries queries.BookingQueries,
) *BookingHandler {
	return &BookingHandler{
		bookings:   bookings,
		orderLines: orderLines,
		queries:    bookingQueries,
	}
}

// @Summary Create booking
// @Description Book one or more time slots on a court
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} queries.BookingView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.bookings.Create(c.Request.Context(), req.ToParams(userID))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrCourtNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Court not found",
			})
		case errs.Is(err, errs.ErrSlotConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Slot already booked",
			})
		case errs.Is(err, errs.ErrCourtUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Court is not available for booking",
			})
		case errs.Is(err, errs.ErrInvalidSlot):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid time slot",
			})
		case errs.Is(err, errs.ErrNoMatchingRule):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "No pricing rule covers the requested slot",
			})
		case errs.Is(err, errs.ErrAmbiguousPricingRule):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Pricing rules are ambiguous for the requested slot",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.BookingView
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.abortQueryErr(c, err)
		return
	}

	if !h.mayView(c, view.CustomerID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List bookings for a court on a day
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param court_id query string true "Court ID"
// @Param day query string true "Day (RFC3339 date)"
// @Success 200 {array} queries.BookingView
// @Router /bookings [get]
func (h *BookingHandler) ListByCourtAndDay(c *gin.Context) {
	courtID, err := uuid.Parse(c.Query("court_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid court ID",
		})
		return
	}
	day, err := time.Parse("2006-01-02", c.Query("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid day, expected YYYY-MM-DD",
		})
		return
	}

	views, err := h.queries.ListByCourtAndDay(c.Request.Context(), courtID, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary List own bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.BookingView
// @Router /bookings/mine [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.queries.ListByCustomer(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Cancel booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	userID, ok := middleware.GetUserID(c)
	role, okRole := middleware.GetUserRole(c)
	if !ok || !okRole {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), id, userID, role); err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errs.Is(err, commands.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access denied",
			})
		case errs.Is(err, errs.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Booking can no longer be cancelled",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Check in an occurrence
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Occurrence ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /occurrences/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid occurrence ID",
		})
		return
	}

	if err := h.bookings.CheckIn(c.Request.Context(), id); err != nil {
		switch {
		case errs.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Occurrence not found",
			})
		case errs.Is(err, errs.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Occurrence cannot be started",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Add a product to the order
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AddItemRequest true "Item request"
// @Success 201 {object} resdto.IDResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/items [post]
func (h *BookingHandler) AddItem(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	var req reqdto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	lineID, err := h.orderLines.AddItem(c.Request.Context(), commands.AddItemParams{
		BookingID:    bookingID,
		OccurrenceID: req.OccurrenceID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		h.abortLineErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: lineID})
}

// @Summary Add a service to the order
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AddServiceRequest true "Service request"
// @Success 201 {object} resdto.IDResponse
// @Router /bookings/{id}/services [post]
func (h *BookingHandler) AddService(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}

	var req reqdto.AddServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	lineID, err := h.orderLines.AddService(c.Request.Context(), commands.AddServiceParams{
		BookingID:    bookingID,
		OccurrenceID: req.OccurrenceID,
		ServiceID:    req.ServiceID,
		Minutes:      req.Minutes,
	})
	if err != nil {
		h.abortLineErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: lineID})
}

// @Summary Remove a product line
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param lineID path string true "Line ID"
// @Success 204
// @Router /bookings/{id}/items/{lineID} [delete]
func (h *BookingHandler) RemoveItem(c *gin.Context) {
	h.removeLine(c, h.orderLines.RemoveItem)
}

// @Summary Remove a service line
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param lineID path string true "Line ID"
// @Success 204
// @Router /bookings/{id}/services/{lineID} [delete]
func (h *BookingHandler) RemoveService(c *gin.Context) {
	h.removeLine(c, h.orderLines.RemoveService)
}

func (h *BookingHandler) removeLine(c *gin.Context, remove func(ctx context.Context, bookingID, lineID uuid.UUID) error) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID",
		})
		return
	}
	lineID, err := uuid.Parse(c.Param("lineID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid line ID",
		})
		return
	}

	if err := remove(c.Request.Context(), bookingID, lineID); err != nil {
		h.abortLineErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) abortLineErr(c *gin.Context, err error) {
	switch {
	case errs.Is(err, errs.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errs.Is(err, errs.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Line not found",
		})
	case errs.Is(err, errs.ErrOrderNotPending):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order is no longer open",
		})
	case errs.Is(err, errs.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func (h *BookingHandler) abortQueryErr(c *gin.Context, err error) {
	if errs.Is(err, errs.ErrBookingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func (h *BookingHandler) mayView(c *gin.Context, ownerID uuid.UUID) bool {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return false
	}
	if userID == ownerID {
		return true
	}
	role, ok := middleware.GetUserRole(c)
	return ok && (role == user.RoleStaff || role == user.RoleAdmin)
}
