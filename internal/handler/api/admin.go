package api

import (
	"net/http"

	reqdto "shuttlecourt/internal/handler/dto/request"
	resdto "shuttlecourt/internal/handler/dto/response"
	"shuttlecourt/internal/handler/httperr"
	"shuttlecourt/internal/pkg/errs"
	"shuttlecourt/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	admin commands.AdminCommands
}

func NewAdminHandler(admin commands.AdminCommands) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// @Summary Create court
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateCourtRequest true "Court request"
// @Success 201 {object} resdto.IDResponse
// @Router /admin/courts [post]
func (h *AdminHandler) CreateCourt(c *gin.Context) {
	var req reqdto.CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	id, err := h.admin.CreateCourt(c.Request.Context(), req.ToParams())
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidLateFee):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Late fee percent out of range", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to create court", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: id})
}

// @Summary Create pricing rule
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Court ID"
// @Param request body reqdto.CreateRuleRequest true "Rule request"
// @Success 201 {object} resdto.IDResponse
// @Router /admin/courts/{id}/rules [post]
func (h *AdminHandler) CreatePricingRule(c *gin.Context) {
	courtID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid court ID", nil)
		return
	}

	var req reqdto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	id, err := h.admin.CreatePricingRule(c.Request.Context(), req.ToParams(courtID))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrCourtNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Court not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid pricing rule", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: id})
}

// @Summary Create user account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateUserRequest true "User request"
// @Success 201 {object} resdto.IDResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req reqdto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	id, err := h.admin.CreateUser(c.Request.Context(), req.ToParams())
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrEmailTaken):
			httperr.AbortWithError(c, http.StatusConflict, err, "Email already in use", nil)
		default:
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid user", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: id})
}

// @Summary Create voucher
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateVoucherRequest true "Voucher request"
// @Success 201 {object} resdto.IDResponse
// @Router /admin/vouchers [post]
func (h *AdminHandler) CreateVoucher(c *gin.Context) {
	var req reqdto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	id, err := h.admin.CreateVoucher(c.Request.Context(), req.ToParams())
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrIneligibleVoucher):
			httperr.AbortWithError(c, http.StatusConflict, err, "Voucher code already exists", nil)
		default:
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Invalid voucher", nil)
		}
		return
	}
	c.JSON(http.StatusCreated, resdto.IDResponse{ID: id})
}
