package repository

import (
	"context"

	"ridepool/internal/models"

	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) GetByRideAndUser(rideID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := r.db.Where("ride_id = ? AND user_id = ?", rideID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) ListByRide(rideID uint) ([]models.Participant, error) {
	var list []models.Participant
	err := r.db.Where("ride_id = ?", rideID).Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *ParticipantRepository) CountByRide(rideID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participant{}).Where("ride_id = ?", rideID).Count(&count).Error
	return count, err
}

// SetCheckoutSession records the provider session on the participant after
// the session is created.
func (r *ParticipantRepository) SetCheckoutSession(ctx context.Context, participantID uint, sessionID string) error {
	return r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("id = ?", participantID).
		Update("checkout_session_id", sessionID).Error
}
