package api

import (
	"net/http"

	resdto "shuttlecourt/internal/handler/dto/response"
	"shuttlecourt/internal/handler/httperr"
	"shuttlecourt/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type SweepHandler struct {
	sweep commands.SweepCommands
}

func NewSweepHandler(sweep commands.SweepCommands) *SweepHandler {
	return &SweepHandler{sweep: sweep}
}

// @Summary Start occurrences whose slot has begun
// @Tags sweeps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /sweeps/start-due [post]
func (h *SweepHandler) StartDue(c *gin.Context) {
	n, err := h.sweep.StartDueOccurrences(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Sweep failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{Processed: n})
}

// @Summary Expire orders whose payment hold lapsed
// @Tags sweeps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /sweeps/expire-overdue [post]
func (h *SweepHandler) ExpireOverdue(c *gin.Context) {
	n, err := h.sweep.ExpireOverdueOrders(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Sweep failed", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{Processed: n})
}
