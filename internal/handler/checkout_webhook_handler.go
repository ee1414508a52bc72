package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"ridepool/config"
	"ridepool/internal/repository"
	"ridepool/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutEvent is the provider's push payload. Delivery is at-least-once;
// the same event can arrive multiple times and race the client's status poll.
type CheckoutEvent struct {
	Type string `json:"type"` // checkout.session.completed, checkout.session.expired
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			AmountTotal   int64             `json:"amount_total"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type CheckoutWebhookHandler struct {
	settleSvc *service.SettlementService
	cfg       *config.Config
}

func NewCheckoutWebhookHandler(settleSvc *service.SettlementService, cfg *config.Config) *CheckoutWebhookHandler {
	return &CheckoutWebhookHandler{settleSvc: settleSvc, cfg: cfg}
}

// Handle processes signed checkout events. The signature is verified before
// anything is parsed or applied; an invalid signature never mutates state.
func (h *CheckoutWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Checkout.WebhookSecret != "" {
		sig := c.GetHeader("X-Checkout-Signature")
		if !VerifyWebhookSignature(h.cfg.Checkout.WebhookSecret, body, sig) {
			log.Printf("[WEBHOOK] invalid signature from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	} else {
		log.Printf("[WEBHOOK] no webhook secret configured, accepting unsigned event")
	}
	var event CheckoutEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	sessionID := event.Data.Object.ID
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		_, err := h.settleSvc.Settle(c.Request.Context(), sessionID, event.Data.Object.PaymentIntent, event.Data.Object.AmountTotal)
		if err != nil {
			if errors.Is(err, repository.ErrUnknownSession) {
				// Acknowledge so the provider stops retrying a session we
				// never opened; do not fabricate state for it.
				log.Printf("[WEBHOOK] unknown session %s, acknowledging", sessionID)
				c.JSON(http.StatusOK, gin.H{"received": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settle failed"})
			return
		}
	case "checkout.session.expired":
		if err := h.settleSvc.Expire(c.Request.Context(), sessionID); err != nil && !errors.Is(err, repository.ErrUnknownSession) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "expire failed"})
			return
		}
	default:
		log.Printf("[WEBHOOK] ignoring event type %q session=%s", event.Type, sessionID)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body against
// the shared webhook secret.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
