package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitprime-classes/internal/backend"
)

type hireRequest struct {
	MembershipID string `json:"membershipId" binding:"required"`
}

type payRequest struct {
	Method string `json:"method"`
}

// GetMemberships handles GET /api/memberships.
func (h *Handler) GetMemberships(c *gin.Context) {
	data, err := h.gateway.FetchMemberships(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// GetMyContracts handles GET /api/contracts/mine.
func (h *Handler) GetMyContracts(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	data, err := h.gateway.FetchUserContracts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// PostContract handles POST /api/contracts: the signed-in user hires a membership.
func (h *Handler) PostContract(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req hireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "membershipId is required"})
		return
	}

	data, err := h.gateway.HireMembership(c.Request.Context(), backend.HireRequest{UserID: userID, MembershipID: req.MembershipID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// PayContract handles POST /api/contracts/:id/pay.
func (h *Handler) PayContract(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	data, err := h.gateway.SimulatePayment(c.Request.Context(), backend.PaymentRequest{ContractID: c.Param("id"), PaymentMethod: req.Method})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// CancelContract handles PATCH /api/contracts/:id/cancel.
func (h *Handler) CancelContract(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	data, err := h.gateway.CancelContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
