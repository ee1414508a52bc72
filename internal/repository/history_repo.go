package repository

import (
	"ridepool/internal/models"

	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Create(e *models.HistoryEntry) error {
	return r.db.Create(e).Error
}

func (r *HistoryRepository) ListByUserID(userID uint, limit, offset int) ([]models.HistoryEntry, error) {
	var list []models.HistoryEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
