package service

import (
	"context"

	"ridepool/internal/models"
	"ridepool/internal/repository"
)

// Narrow store contracts the services depend on. The gorm repositories
// satisfy them; tests substitute in-memory fakes.

type RideStore interface {
	Create(ride *models.Ride) error
	GetByID(ctx context.Context, id uint) (*models.Ride, error)
	DisplayCodeExists(code string) (bool, error)
	AllocateSeat(ctx context.Context, rideID uint, p *models.Participant) error
	ReleaseSeat(ctx context.Context, rideID, participantID uint) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	SettleBySession(ctx context.Context, sessionID, paymentIntentID string, newCode func() (string, error)) (*repository.SettleOutcome, error)
	ExpireBySession(ctx context.Context, sessionID string) (bool, error)
}

type ParticipantStore interface {
	SetCheckoutSession(ctx context.Context, participantID uint, sessionID string) error
}

type AccessCodeStore interface {
	GetByRideID(rideID uint) (*models.RideCode, error)
}

type NotificationStore interface {
	Create(n *models.Notification) error
}

type HistoryStore interface {
	Create(e *models.HistoryEntry) error
}
