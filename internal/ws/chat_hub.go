package ws

import (
	"encoding/json"
	"sync"
)

// RideRoom is one chat room per ride.
type RideRoom struct {
	RideID  uint
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

func NewRideRoom(rideID uint) *RideRoom {
	return &RideRoom{RideID: rideID, clients: make(map[*Client]struct{})}
}

func (r *RideRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *RideRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *RideRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *RideRoom) Broadcast(from *Client, payload interface{}) {
	data, _ := json.Marshal(payload)
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != from {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		c.TrySend(data)
	}
}

// ChatHub holds all ride chat rooms by ride ID.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*RideRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*RideRoom)}
}

func (h *ChatHub) GetOrCreateRoom(rideID uint) *RideRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[rideID]; ok {
		return r
	}
	r := NewRideRoom(rideID)
	h.rooms[rideID] = r
	return r
}
