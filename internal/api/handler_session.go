package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/schedule"
	"fitprime-classes/internal/store"
)

type sessionResponse struct {
	User  *schedule.User `json:"user"`
	Admin bool           `json:"admin"`
}

type putSessionRequest struct {
	ID        string `json:"id" binding:"required"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"tel"`
	Mail      string `json:"mail"`
}

// GetSession returns the signed-in user, or a null user.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionResponse{User: h.identity.Current(), Admin: h.identity.IsAdmin()})
}

// PutSession signs a user in after the renderer authenticated against the backend.
func (h *Handler) PutSession(c *gin.Context) {
	var req putSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user := schedule.User{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Mail:      req.Mail,
	}
	if err := h.identity.SignIn(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: h.identity.Current(), Admin: h.identity.IsAdmin()})
}

// DeleteSession signs the user out.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.identity.SignOut(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetJournal lists recent reserve and cancel attempts, newest first.
func (h *Handler) GetJournal(c *gin.Context) {
	limit := store.DefaultJournalLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	records, err := h.journal.RecentActions(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
