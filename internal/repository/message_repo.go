package repository

import (
	"ridepool/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(m *models.RideMessage) error {
	return r.db.Create(m).Error
}

func (r *MessageRepository) ListByRide(rideID uint, limit, offset int) ([]models.RideMessage, error) {
	var list []models.RideMessage
	err := r.db.Where("ride_id = ?", rideID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
