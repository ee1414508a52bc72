package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID uint
	Send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 256)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// TrySend queues msg without blocking. Returns false when the client is
// closed or its buffer is full; sending through here never races Close
// into a send on a closed channel.
func (c *Client) TrySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// WritePump copies messages from client.Send to the connection and keeps it
// alive with pings.
func WritePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
