package models

import "time"

// RideCode holds the current chat access code for a ride, one row per ride.
// Each settlement upserts a fresh code; prior codes stop working.
type RideCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RideID    uint      `gorm:"not null;uniqueIndex" json:"ride_id"`
	Code      string    `gorm:"size:16;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ride Ride `gorm:"foreignKey:RideID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RideCode) TableName() string {
	return "ride_codes"
}
