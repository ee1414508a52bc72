package service

import (
	"context"
	"fmt"
	"log"

	"ridepool/internal/domain"
	"ridepool/pkg/code"
)

// SettlementService is the idempotent state machine that converts a raw
// completion signal into one committed payment transition. It is invoked by
// two independent, racing triggers for the same session: the client's status
// poll and the provider's webhook. Retries and duplicates are expected; the
// payment row's status is the single source of truth and all downstream
// effects hang off the PENDING to COMPLETED transition, which the store
// applies at most once.
type SettlementService struct {
	payments PaymentStore
	codes    AccessCodeStore
	emitter  *NotificationService
}

func NewSettlementService(payments PaymentStore, codes AccessCodeStore, emitter *NotificationService) *SettlementService {
	return &SettlementService{payments: payments, codes: codes, emitter: emitter}
}

type SettlementResult struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	AlreadySettled  bool   `json:"already_settled"`
	RideID          uint   `json:"ride_id"`
	UserID          uint   `json:"user_id"`
	AmountPaidCents int64  `json:"amount_paid_cents"`
	AccessCode      string `json:"access_code,omitempty"`
}

// Settle applies a completion signal for sessionID. Safe to call any number
// of times, from any channel, in any order: the first call commits the
// transition, every later call returns the same outcome without re-mutating
// participant, ride code, or notifications.
func (s *SettlementService) Settle(ctx context.Context, sessionID, paymentIntentID string, reportedAmountCents int64) (*SettlementResult, error) {
	p, err := s.payments.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentStatusCompleted {
		return s.settledResult(sessionID, p.RideID, p.UserID, p.AmountCents), nil
	}
	if reportedAmountCents > 0 && reportedAmountCents != p.AmountCents {
		log.Printf("[SETTLE] amount mismatch session=%s reported=%d recorded=%d", sessionID, reportedAmountCents, p.AmountCents)
	}

	// The generator runs inside the store transaction, only when this call
	// actually performs the transition; losing racers never draw a code.
	out, err := s.payments.SettleBySession(ctx, sessionID, paymentIntentID, func() (string, error) {
		return code.Generate(domain.AccessCodeLength)
	})
	if err != nil {
		return nil, err
	}
	if out.AlreadySettled {
		// Lost the race against the other delivery channel; report its outcome.
		return s.settledResult(sessionID, out.Payment.RideID, out.Payment.UserID, out.Payment.AmountCents), nil
	}
	if out.ParticipantMissing {
		// Consistency fault: a payment with no participant. The payment is
		// committed COMPLETED so the provider stops retrying, but there is
		// nobody to grant access to.
		log.Printf("[SETTLE] participant missing for session=%s ride=%d user=%d", sessionID, out.Payment.RideID, out.Payment.UserID)
		return &SettlementResult{
			SessionID: sessionID,
			Status:    out.Payment.Status,
			RideID:    out.Payment.RideID,
			UserID:    out.Payment.UserID,
		}, nil
	}

	s.emitter.Notify(out.Payment.UserID, domain.NotifPaymentReceived, "Payment received",
		fmt.Sprintf("Your seat is confirmed. Chat access code: %s", out.AccessCode),
		map[string]interface{}{
			"ride_id":      out.Payment.RideID,
			"access_code":  out.AccessCode,
			"amount_cents": out.Payment.AmountCents,
		})
	s.emitter.Record(out.Payment.UserID, "payment_received", &out.Payment.RideID, map[string]interface{}{
		"amount_cents": out.Payment.AmountCents,
		"session_id":   sessionID,
	})

	return &SettlementResult{
		SessionID:       sessionID,
		Status:          out.Payment.Status,
		RideID:          out.Payment.RideID,
		UserID:          out.Payment.UserID,
		AmountPaidCents: out.Participant.AmountPaidCents,
		AccessCode:      out.AccessCode,
	}, nil
}

// Expire handles a provider session-expiry signal: a still-pending payment
// becomes FAILED, nothing else moves. The seat consumed at join time is not
// released; see the policy note in DESIGN.md.
func (s *SettlementService) Expire(ctx context.Context, sessionID string) error {
	changed, err := s.payments.ExpireBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	if changed {
		log.Printf("[SETTLE] session expired, payment failed session=%s", sessionID)
	}
	return nil
}

func (s *SettlementService) settledResult(sessionID string, rideID, userID uint, amountCents int64) *SettlementResult {
	res := &SettlementResult{
		SessionID:       sessionID,
		Status:          domain.PaymentStatusCompleted,
		AlreadySettled:  true,
		RideID:          rideID,
		UserID:          userID,
		AmountPaidCents: amountCents,
	}
	rc, err := s.codes.GetByRideID(rideID)
	if err != nil {
		log.Printf("[SETTLE] ride code lookup failed ride=%d: %v", rideID, err)
		return res
	}
	if rc != nil {
		res.AccessCode = rc.Code
	}
	return res
}
