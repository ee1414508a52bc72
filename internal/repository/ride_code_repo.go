package repository

import (
	"errors"

	"ridepool/internal/models"

	"gorm.io/gorm"
)

type RideCodeRepository struct {
	db *gorm.DB
}

func NewRideCodeRepository(db *gorm.DB) *RideCodeRepository {
	return &RideCodeRepository{db: db}
}

// GetByRideID returns the ride's current access code, or nil when no
// settlement has generated one yet.
func (r *RideCodeRepository) GetByRideID(rideID uint) (*models.RideCode, error) {
	var rc models.RideCode
	err := r.db.Where("ride_id = ?", rideID).First(&rc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}
