package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ridepool/config"
	"ridepool/internal/auth"
	"ridepool/internal/domain"
	"ridepool/internal/models"
	"ridepool/internal/repository"
	"ridepool/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsInbound struct {
	Body string `json:"body"`
}

type wsOutbound struct {
	Type      string    `json:"type"`
	RideID    uint      `json:"ride_id"`
	SenderID  uint      `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// UpgradeChatWS upgrades the connection for a ride chat room. Entry is gated
// by the ride's current access code, which rotates on every settlement; the
// ride owner enters by ownership instead.
func UpgradeChatWS(
	cfg *config.JWTConfig,
	hub *ws.ChatHub,
	rideRepo *repository.RideRepository,
	rideCodeRepo *repository.RideCodeRepository,
	messageRepo *repository.MessageRepository,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		token := c.Query("token")
		if token == "" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"token required"}`))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
			return
		}
		rideID64, _ := strconv.ParseUint(c.Query("ride_id"), 10, 64)
		if rideID64 == 0 {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"ride_id required"}`))
			return
		}
		rideID := uint(rideID64)

		ride, err := rideRepo.GetByID(c.Request.Context(), rideID)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"ride not found"}`))
			return
		}
		if ride.OwnerID != claims.UserID {
			rc, err := rideCodeRepo.GetByRideID(rideID)
			if err != nil || rc == nil || rc.Code == "" || rc.Code != c.Query("code") {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid access code"}`))
				return
			}
		}

		room := hub.GetOrCreateRoom(rideID)
		client := ws.NewClient(claims.UserID)
		room.Join(client)
		defer func() {
			room.Leave(client)
			client.Close()
		}()

		go ws.WritePump(client, conn)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var in wsInbound
			if err := json.Unmarshal(data, &in); err != nil || in.Body == "" {
				continue
			}
			msg := &models.RideMessage{
				RideID:   rideID,
				SenderID: claims.UserID,
				Kind:     domain.MessageKindText,
				Body:     in.Body,
			}
			_ = messageRepo.Create(msg)
			room.Broadcast(client, wsOutbound{
				Type:      "message",
				RideID:    rideID,
				SenderID:  claims.UserID,
				Body:      in.Body,
				CreatedAt: msg.CreatedAt,
			})
		}
	}
}
