package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/identity"
	"fitprime-classes/internal/model"
	"fitprime-classes/internal/normalize"
	"fitprime-classes/internal/refresh"
	"fitprime-classes/internal/viewmodel"
)

// Gateway is the part of the backend client the handlers pass through.
type Gateway interface {
	FetchActivities(ctx context.Context) ([]backend.RawActivity, error)
	FetchClasses(ctx context.Context, q backend.ClassQuery) ([]backend.RawClass, error)
	FetchClassReservations(ctx context.Context, classID string) ([]backend.ClassReservationRow, error)
	FetchContractsByStatus(ctx context.Context, status string) (json.RawMessage, error)
	FetchMemberships(ctx context.Context) (json.RawMessage, error)
	FetchUserContracts(ctx context.Context, userID string) (json.RawMessage, error)
	HireMembership(ctx context.Context, req backend.HireRequest) (json.RawMessage, error)
	SimulatePayment(ctx context.Context, req backend.PaymentRequest) (json.RawMessage, error)
	CancelContract(ctx context.Context, contractID string) (json.RawMessage, error)
}

// Journal lists recent reserve/cancel attempts.
type Journal interface {
	RecentActions(ctx context.Context, limit int) ([]model.ActionRecord, error)
}

// Trigger queues a background refresh.
type Trigger interface {
	Trigger(reason refresh.Reason) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	classes  *viewmodel.ViewModel
	identity *identity.Context
	gateway  Gateway
	journal  Journal
	trigger  Trigger
	norm     normalize.Normalizer
}

// NewHandler creates a new API handler.
func NewHandler(classes *viewmodel.ViewModel, id *identity.Context, gateway Gateway, journal Journal, trigger Trigger, norm normalize.Normalizer) *Handler {
	return &Handler{
		classes:  classes,
		identity: id,
		gateway:  gateway,
		journal:  journal,
		trigger:  trigger,
		norm:     norm,
	}
}

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps err onto a status code and a user-facing message.
func respondError(c *gin.Context, err error) {
	status := apperror.Status(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: apperror.UserMessage(err)})
}

// requireUser aborts with 401 when nobody is signed in.
func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	user := h.identity.Current()
	if user == nil {
		respondError(c, apperror.ErrLoginRequired)
		return "", false
	}
	return user.ID, true
}

// RequireAdmin rejects admin report requests when no admin token is configured.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.identity.IsAdmin() {
			respondError(c, apperror.ErrAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// isEmptyBody reports a bind error caused by a request without a body.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
