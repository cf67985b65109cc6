package websocket

import (
	"log/slog"
	"sync"
)

// Room = 1 anime comment section for multiple clients
type Room struct {
	ID      int64              // anime ID
	Clients map[string]*Client // map[clientID] -> *Client
	mu      sync.RWMutex       // mutex for concurrent access
}

// NewRoom creates a new comment Room
func NewRoom(id int64) *Room {
	return &Room{
		ID:      id,
		Clients: make(map[string]*Client),
	}
}

// AddClient: adds new client to the room
func (r *Room) AddClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// check if client already exists
	if r.Clients[c.ID] == nil {
		slog.Info("Client added to room", "room_id", r.ID, "client_id", c.ID)
		r.Clients[c.ID] = c
	} else {
		slog.Warn("Client already in room", "room_id", r.ID, "client_id", c.ID)
	}
}

// RemoveClient: removes client from the room
func (r *Room) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// check if client exists
	if r.Clients[c.ID] != nil {
		slog.Info("Client removed from room", "room_id", r.ID, "client_id", c.ID)
		delete(r.Clients, c.ID)
	} else {
		slog.Warn("Client not found in room", "room_id", r.ID, "client_id", c.ID)
	}
}

// Broadcast: sends message to all clients in the room, best effort. Clients
// whose send buffer is full are returned so the hub can drop them; a stalled
// reader must not block the whole room.
func (r *Room) Broadcast(message []byte) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var slow []*Client
	for _, client := range r.Clients {
		select {
		case client.SendChannel <- message:
		default:
			slog.Warn("Client send buffer full, dropping", "room_id", r.ID, "client_id", client.ID)
			slow = append(slow, client)
		}
	}
	return slow
}

// GetClientCount: returns the number of clients in the room
func (r *Room) GetClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// GetClients: returns copy of clients list in the room
func (r *Room) GetClients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// create a tmp slice to hold clients
	clients := make([]*Client, 0, len(r.Clients))
	for _, client := range r.Clients {
		clients = append(clients, client)
	}
	return clients
}
