package service

import (
	"encoding/json"
	"log"

	"ridepool/internal/models"
)

// NotificationService appends notifications and history entries as side
// effects of business transitions. It never reads its own output and its
// failures must never fail the caller: every method logs and swallows
// errors. The booking and settlement services rely on that contract.
type NotificationService struct {
	notifications NotificationStore
	history       HistoryStore
}

func NewNotificationService(notifications NotificationStore, history HistoryStore) *NotificationService {
	return &NotificationService{notifications: notifications, history: history}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.notifications.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		log.Printf("[NOTIFY] create failed user=%d type=%s: %v", userID, notifType, err)
	}
}

func (s *NotificationService) Record(userID uint, action string, rideID *uint, meta map[string]interface{}) {
	var metaJSON string
	if meta != nil {
		b, _ := json.Marshal(meta)
		metaJSON = string(b)
	}
	err := s.history.Create(&models.HistoryEntry{
		UserID:   userID,
		Action:   action,
		RideID:   rideID,
		Metadata: metaJSON,
	})
	if err != nil {
		log.Printf("[HISTORY] create failed user=%d action=%s: %v", userID, action, err)
	}
}
