package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"ridepool/internal/domain"
	"ridepool/internal/models"
	"ridepool/internal/repository"
	"ridepool/pkg/checkout"
	"ridepool/pkg/code"
)

var (
	ErrOwnRide             = errors.New("ride owner cannot join their own ride")
	ErrInvalidRideInput    = errors.New("invalid ride input")
	ErrCheckoutUnavailable = errors.New("checkout provider unavailable")
)

// BookingService owns ride creation and the seat-allocation path. Seat
// accounting happens inside RideStore.AllocateSeat; this service layers
// validation, code generation, the provider session, and side effects on top.
type BookingService struct {
	rides        RideStore
	payments     PaymentStore
	participants ParticipantStore
	provider     checkout.Provider
	emitter      *NotificationService
	currency     string
	successURL   string
	cancelURL    string
}

func NewBookingService(
	rides RideStore,
	payments PaymentStore,
	participants ParticipantStore,
	provider checkout.Provider,
	emitter *NotificationService,
	currency, successURL, cancelURL string,
) *BookingService {
	return &BookingService{
		rides:        rides,
		payments:     payments,
		participants: participants,
		provider:     provider,
		emitter:      emitter,
		currency:     currency,
		successURL:   successURL,
		cancelURL:    cancelURL,
	}
}

type CreateRideInput struct {
	OwnerID       uint
	Origin        string
	Destination   string
	DepartureTime time.Time
	TotalSeats    int
	PriceCents    int64
}

func (s *BookingService) CreateRide(ctx context.Context, in CreateRideInput) (*models.Ride, error) {
	if in.Origin == "" || in.Destination == "" || in.TotalSeats <= 0 || in.PriceCents < 0 {
		return nil, ErrInvalidRideInput
	}
	displayCode, err := code.GenerateUnique(domain.DisplayCodeLength, s.rides.DisplayCodeExists)
	if err != nil {
		return nil, fmt.Errorf("display code: %w", err)
	}
	ride := &models.Ride{
		OwnerID:       in.OwnerID,
		Origin:        in.Origin,
		Destination:   in.Destination,
		DepartureTime: in.DepartureTime,
		TotalSeats:    in.TotalSeats,
		SeatsLeft:     in.TotalSeats,
		PriceCents:    in.PriceCents,
		DisplayCode:   displayCode,
		Status:        domain.RideStatusActive,
	}
	if err := s.rides.Create(ride); err != nil {
		return nil, err
	}
	s.emitter.Record(in.OwnerID, "ride_created", &ride.ID, map[string]interface{}{
		"display_code": displayCode,
		"total_seats":  in.TotalSeats,
	})
	return ride, nil
}

type JoinResult struct {
	Participant *models.Participant
	JoinCode    string
	SessionID   string
	CheckoutURL string
}

// Join reserves one seat for userID and opens a checkout session for the
// amount due. The seat decrement and participant insert commit atomically in
// the store; a provider failure afterwards releases the seat again so no
// partial state survives.
func (s *BookingService) Join(ctx context.Context, rideID, userID uint, amountDueCents int64) (*JoinResult, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusActive {
		return nil, repository.ErrRideNotActive
	}
	if ride.OwnerID == userID {
		return nil, ErrOwnRide
	}
	amountDue := ride.PriceCents
	if amountDueCents > 0 {
		amountDue = amountDueCents
	}
	joinCode, err := code.Generate(domain.JoinCodeLength)
	if err != nil {
		return nil, err
	}
	participant := &models.Participant{
		RideID:         rideID,
		UserID:         userID,
		JoinCode:       joinCode,
		AmountDueCents: amountDue,
	}
	if err := s.rides.AllocateSeat(ctx, rideID, participant); err != nil {
		return nil, err
	}

	sess, err := s.provider.CreateSession(ctx, checkout.CreateSessionRequest{
		AmountCents: amountDue,
		Currency:    s.currency,
		Description: fmt.Sprintf("Seat on ride %s: %s to %s", ride.DisplayCode, ride.Origin, ride.Destination),
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
		Metadata: map[string]string{
			"ride_id": strconv.FormatUint(uint64(rideID), 10),
			"user_id": strconv.FormatUint(uint64(userID), 10),
		},
	})
	if err != nil {
		s.rollbackJoin(ctx, rideID, participant.ID)
		return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	payment := &models.Payment{
		UserID:      userID,
		RideID:      rideID,
		AmountCents: amountDue,
		Currency:    s.currency,
		SessionID:   sess.SessionID,
		Status:      domain.PaymentStatusPending,
		Metadata:    fmt.Sprintf(`{"ride_id":%d,"user_id":%d}`, rideID, userID),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.rollbackJoin(ctx, rideID, participant.ID)
		return nil, err
	}
	if err := s.participants.SetCheckoutSession(ctx, participant.ID, sess.SessionID); err != nil {
		// Non-fatal: the payment row carries the session id too.
		log.Printf("[JOIN] set session on participant %d failed: %v", participant.ID, err)
	}
	participant.CheckoutSessionID = sess.SessionID

	s.emitter.Notify(ride.OwnerID, domain.NotifRideJoined, "New rider",
		fmt.Sprintf("A rider joined your %s to %s ride.", ride.Origin, ride.Destination),
		map[string]interface{}{"ride_id": rideID, "user_id": userID})
	s.emitter.Record(userID, "ride_joined", &rideID, map[string]interface{}{
		"amount_due_cents": amountDue,
		"session_id":       sess.SessionID,
	})

	return &JoinResult{
		Participant: participant,
		JoinCode:    joinCode,
		SessionID:   sess.SessionID,
		CheckoutURL: sess.RedirectURL,
	}, nil
}

func (s *BookingService) rollbackJoin(ctx context.Context, rideID, participantID uint) {
	if err := s.rides.ReleaseSeat(ctx, rideID, participantID); err != nil {
		log.Printf("[JOIN] seat release failed ride=%d participant=%d: %v", rideID, participantID, err)
	}
}
