package models

import (
	"time"

	"gorm.io/gorm"
)

// User is thin profile storage. Identity (user id, email) comes from the
// external identity provider's JWT; rows here only back the profile endpoints.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone     string         `gorm:"size:32" json:"phone"`
	AvatarURL string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
