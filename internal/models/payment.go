package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	RideID          uint           `gorm:"not null;index" json:"ride_id"`
	AmountCents     int64          `gorm:"not null" json:"amount_cents"`
	Currency        string         `gorm:"size:3;default:'USD'" json:"currency"`
	SessionID       string         `gorm:"size:255;uniqueIndex;not null" json:"session_id"` // provider checkout session; idempotency key
	PaymentIntentID string         `gorm:"size:255" json:"payment_intent_id"`
	Status          string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED, REFUNDED
	Metadata        string         `gorm:"type:text" json:"metadata"`            // JSON
	CompletedAt     *time.Time     `json:"completed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Ride Ride `gorm:"foreignKey:RideID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
