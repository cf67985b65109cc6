package websocket

// Central hub managing all connections and rooms.
// Each WebSocket connection runs in its own goroutine; the hub state is
// guarded by a RWMutex the same way a Room guards its client map.

import (
	"log/slog"
	"sync"
)

// Bridge fans events out to other API instances. The redis bridge implements
// it; a nil bridge means single-instance deployment.
type Bridge interface {
	Publish(msg *Message) error
}

type Hub struct {
	mu      sync.RWMutex
	rooms   map[int64]*Room    // map[animeID] -> *Room
	clients map[string]*Client // all registered clients by client ID
	bridge  Bridge
}

// NewHub creates the central hub
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[int64]*Room),
		clients: make(map[string]*Client),
	}
}

// SetBridge attaches the cross-instance bridge; call before serving traffic
func (h *Hub) SetBridge(b Bridge) {
	h.bridge = b
}

// Register: tracks a newly connected client (not yet in any room)
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	slog.Info("Client registered", "client_id", c.ID, "user_id", c.UserID)
}

// Unregister: removes the client from its room (if any) and closes it
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	room := h.rooms[c.RoomID]
	h.mu.Unlock()

	if room != nil {
		room.RemoveClient(c)
		h.reapRoom(room.ID)
	}
	c.Close()
	slog.Info("Client unregistered", "client_id", c.ID, "user_id", c.UserID)
}

// JoinRoom: moves the client into the room for animeID, leaving any previous
// room first. Join/leave is the realtime control plane, independent of REST.
// RoomID is only ever read or written under the hub mutex; the read pump and
// the broadcast path race on it otherwise.
func (h *Hub) JoinRoom(c *Client, animeID int64) {
	h.mu.Lock()
	if c.RoomID == animeID {
		h.mu.Unlock()
		return
	}
	prev := h.rooms[c.RoomID]
	room := h.rooms[animeID]
	if room == nil {
		room = NewRoom(animeID)
		h.rooms[animeID] = room
		slog.Info("Room created", "room_id", animeID)
	}
	c.RoomID = animeID
	h.mu.Unlock()

	if prev != nil {
		prev.RemoveClient(c)
		h.reapRoom(prev.ID)
	}
	room.AddClient(c)
}

// LeaveRoom: removes the client from its current room, if any
func (h *Hub) LeaveRoom(c *Client) {
	h.mu.Lock()
	if c.RoomID == NilRoomID {
		h.mu.Unlock()
		return
	}
	room := h.rooms[c.RoomID]
	c.RoomID = NilRoomID
	h.mu.Unlock()

	if room != nil {
		room.RemoveClient(c)
		h.reapRoom(room.ID)
	}
}

// BroadcastComment: fans a comment event out to the event's room on this
// instance and, when bridged, to every other instance. Delivery is at most
// once per connected client with no acknowledgement or replay.
func (h *Hub) BroadcastComment(msg *Message) {
	h.broadcastLocal(msg)

	if h.bridge != nil {
		if err := h.bridge.Publish(msg); err != nil {
			slog.Error("Failed to publish comment event to bridge", "error", err, "room_id", msg.AnimeID)
		}
	}
}

// broadcastLocal delivers to clients connected to this instance only; the
// redis bridge calls this for events that originated elsewhere.
func (h *Hub) broadcastLocal(msg *Message) {
	h.mu.RLock()
	room := h.rooms[msg.AnimeID]
	h.mu.RUnlock()

	if room == nil {
		return
	}

	data, err := msg.ToJSON()
	if err != nil {
		return
	}

	for _, slow := range room.Broadcast(data) {
		h.Unregister(slow)
	}
}

// RoomClientCount reports how many clients are viewing an anime's comments
func (h *Hub) RoomClientCount(animeID int64) int {
	h.mu.RLock()
	room := h.rooms[animeID]
	h.mu.RUnlock()
	if room == nil {
		return 0
	}
	return room.GetClientCount()
}

// reapRoom drops a room once its last client left
func (h *Hub) reapRoom(animeID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[animeID]
	if room != nil && room.GetClientCount() == 0 {
		delete(h.rooms, animeID)
		slog.Info("Room reaped", "room_id", animeID)
	}
}
