package models

import (
	"time"

	"gorm.io/gorm"
)

type Ride struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OwnerID       uint           `gorm:"not null;index" json:"owner_id"`
	Origin        string         `gorm:"size:255;not null" json:"origin"`
	Destination   string         `gorm:"size:255;not null" json:"destination"`
	DepartureTime time.Time      `gorm:"not null;index" json:"departure_time"`
	TotalSeats    int            `gorm:"not null" json:"total_seats"` // immutable after creation
	SeatsLeft     int            `gorm:"not null" json:"seats_left"`  // mutated only through RideRepository.AllocateSeat / ReleaseSeat
	PriceCents    int64          `gorm:"not null" json:"price_cents"`
	DisplayCode   string         `gorm:"size:16;uniqueIndex;not null" json:"display_code"`
	Status        string         `gorm:"size:20;not null;index;default:'ACTIVE'" json:"status"` // ACTIVE, COMPLETED, CANCELLED
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Ride) TableName() string {
	return "rides"
}
