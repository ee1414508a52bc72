package models

import "time"

// HistoryEntry is an append-only, user-scoped audit row. Written as a side
// effect of business transitions; never read back by the core.
type HistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"size:100;not null;index" json:"action"`
	RideID    *uint     `gorm:"index" json:"ride_id"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON
	CreatedAt time.Time `json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "history_entries"
}
