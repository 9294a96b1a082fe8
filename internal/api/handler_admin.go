package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/schedule"
)

// GetAdminClasses handles GET /api/admin/classes: every class, including
// past ones, with its occupancy.
func (h *Handler) GetAdminClasses(c *gin.Context) {
	q := backend.ClassQuery{AllOrdered: true, ActivityID: c.Query("activityId")}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, apperror.Validation("date", "la fecha debe tener el formato AAAA-MM-DD"))
			return
		}
		q.Date = day
	}

	raws, err := h.gateway.FetchClasses(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedule.ProjectAll(h.norm.Sessions(raws), nil)})
}

// GetAdminClassReservations handles GET /api/admin/classes/:id/reservations.
func (h *Handler) GetAdminClassReservations(c *gin.Context) {
	rows, err := h.gateway.FetchClassReservations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GetAdminContracts handles GET /api/admin/contracts?estado=.
func (h *Handler) GetAdminContracts(c *gin.Context) {
	status := c.Query("estado")
	if status == "" {
		respondError(c, apperror.Validation("estado", "falta el estado del contrato"))
		return
	}
	data, err := h.gateway.FetchContractsByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
