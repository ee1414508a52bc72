package handler

import (
	"errors"
	"log"
	"net/http"

	"ridepool/internal/domain"
	"ridepool/internal/middleware"
	"ridepool/internal/repository"
	"ridepool/internal/service"
	"ridepool/pkg/checkout"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves the client-side completion channel: the frontend
// polls session status after returning from hosted checkout. This path races
// the provider webhook for the same session; the settlement service makes
// that race harmless.
type PaymentHandler struct {
	provider    checkout.Provider
	settleSvc   *service.SettlementService
	paymentRepo *repository.PaymentRepository
}

func NewPaymentHandler(provider checkout.Provider, settleSvc *service.SettlementService, paymentRepo *repository.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{provider: provider, settleSvc: settleSvc, paymentRepo: paymentRepo}
}

func (h *PaymentHandler) SessionStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}
	p, err := h.paymentRepo.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSession) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if p.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	// Already settled locally (webhook won the race): no provider round trip.
	if p.Status == domain.PaymentStatusCompleted {
		res, err := h.settleSvc.Settle(c.Request.Context(), sessionID, "", 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settle failed"})
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}
	if p.Status == domain.PaymentStatusFailed {
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": p.Status})
		return
	}

	sess, err := h.provider.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("[PAYMENT] provider get session failed session=%s: %v", sessionID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}
	switch sess.PaymentStatus {
	case checkout.SessionPaid:
		res, err := h.settleSvc.Settle(c.Request.Context(), sessionID, sess.PaymentIntentID, sess.AmountCents)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settle failed"})
			return
		}
		c.JSON(http.StatusOK, res)
	case checkout.SessionExpired:
		if err := h.settleSvc.Expire(c.Request.Context(), sessionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "expire failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": domain.PaymentStatusFailed})
	default:
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": domain.PaymentStatusPending})
	}
}

// ListMine returns the caller's payments, newest first.
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c, 20)
	list, err := h.paymentRepo.ListByUserID(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}
