package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/refresh"
	"fitprime-classes/internal/viewmodel"
)

type stateErrorResponse struct {
	Error string          `json:"error"`
	State viewmodel.State `json:"state"`
}

// GetClasses handles GET /api/classes: it applies the filter and loads the list.
func (h *Handler) GetClasses(c *gin.Context) {
	filter := viewmodel.Filter{
		ActivityID: c.Query("activityId"),
		Date:       c.Query("date"),
	}
	st, err := h.classes.Load(c.Request.Context(), filter)
	h.respondState(c, st, err)
}

// GetClassState handles GET /api/classes/state without fetching.
func (h *Handler) GetClassState(c *gin.Context) {
	c.JSON(http.StatusOK, h.classes.State())
}

// ClearFilters handles DELETE /api/classes/filters.
func (h *Handler) ClearFilters(c *gin.Context) {
	st, err := h.classes.ClearFilters(c.Request.Context())
	h.respondState(c, st, err)
}

// PostRefresh handles POST /api/classes/refresh. The refresh runs in the
// background and merges with one already queued.
func (h *Handler) PostRefresh(c *gin.Context) {
	reason, err := refresh.ParseReason(c.Query("reason"))
	if err != nil {
		respondError(c, err)
		return
	}
	queued := h.trigger.Trigger(reason)
	c.JSON(http.StatusAccepted, gin.H{"reason": reason, "queued": queued})
}

// ReserveClass handles POST /api/classes/:id/reserve.
func (h *Handler) ReserveClass(c *gin.Context) {
	if err := h.classes.Reserve(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.classes.State())
}

// GetActivities handles GET /api/activities, the filter dropdown source.
func (h *Handler) GetActivities(c *gin.Context) {
	raws, err := h.gateway.FetchActivities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.norm.Activities(raws)})
}

// respondState answers a load: the state on success, the error together
// with the (unchanged) state otherwise so the client can offer a retry.
func (h *Handler) respondState(c *gin.Context, st viewmodel.State, err error) {
	if err == nil {
		c.JSON(http.StatusOK, st)
		return
	}
	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		respondError(c, err)
		return
	}
	message := apperror.UserMessage(err)
	if st.Error != "" {
		message = st.Error
	}
	c.JSON(apperror.Status(err), stateErrorResponse{Error: message, State: st})
}
