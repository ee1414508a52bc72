package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant is one user's membership and payment record against one ride.
// Created unpaid by the seat allocator; flipped to paid exactly once by the
// settlement service.
type Participant struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	RideID            uint           `gorm:"not null;index:idx_ride_user,unique" json:"ride_id"`
	UserID            uint           `gorm:"not null;index:idx_ride_user,unique" json:"user_id"`
	JoinCode          string         `gorm:"size:16;not null" json:"-"`
	AmountDueCents    int64          `gorm:"not null" json:"amount_due_cents"`
	AmountPaidCents   int64          `gorm:"not null;default:0" json:"amount_paid_cents"`
	Paid              bool           `gorm:"not null;default:false;index" json:"paid"`
	CheckoutSessionID string         `gorm:"size:255;index" json:"-"`
	PaymentIntentID   string         `gorm:"size:255" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Ride Ride `gorm:"foreignKey:RideID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Participant) TableName() string {
	return "ride_participants"
}
