package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/viewmodel"
)

type cancelRequest struct {
	Confirm bool `json:"confirm"`
}

// CancelReservation handles POST /api/reservations/:id/cancel. The body's
// confirm flag is the user's answer to the confirmation prompt.
func (h *Handler) CancelReservation(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	confirmer := viewmodel.ConfirmFunc(func(string) bool { return req.Confirm })
	if err := h.classes.Cancel(c.Request.Context(), c.Param("id"), confirmer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.classes.State())
}

// GetMyReservations handles GET /api/reservations/mine.
func (h *Handler) GetMyReservations(c *gin.Context) {
	view, err := h.classes.MyReservations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
