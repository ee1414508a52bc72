package models

import (
	"time"

	"gorm.io/gorm"
)

type RideMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RideID    uint           `gorm:"not null;index" json:"ride_id"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Kind      string         `gorm:"size:10;not null;default:'TEXT'" json:"kind"` // TEXT, AUDIO, IMAGE
	Body      string         `gorm:"type:text" json:"body"`
	MediaURL  string         `gorm:"size:512" json:"media_url"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Ride   Ride `gorm:"foreignKey:RideID;constraint:OnDelete:CASCADE" json:"-"`
	Sender User `gorm:"foreignKey:SenderID" json:"-"`
}

func (RideMessage) TableName() string {
	return "ride_messages"
}
