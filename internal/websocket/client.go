package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Individual client connection handler
// for easy tracking purpose: id room = id anime

const ( // ping pong(2-way heartbeat) to keep connection alive
	WriteWait      = 10 * time.Second    // max time write a message to the peer
	PongWait       = 60 * time.Second    // max time to wait for pong from peer => no pong = no connection
	PingPeriod     = (PongWait * 9) / 10 // send ping before pong wait expires, 10% slack for network jitter
	MaxMessageSize = 512                 // maximum message size allowed from peer
)

// NilRoomID marks a client that has not joined any room yet
const NilRoomID int64 = 0

type Client struct {
	ID          string          // unique client ID (one per connection)
	UserID      string          // user ID from auth token (JWT claims)
	UserName    string          // user name from auth token (JWT claims)
	RoomID      int64           // anime ID, NilRoomID when not joined; guarded by the hub mutex
	Conn        *websocket.Conn // WebSocket connection
	SendChannel chan []byte     // channel for outbound messages
	Hub         *Hub            // reference to the central Hub

	closeOnce sync.Once
}

// constructor new client
func NewClient(id, userID, userName string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		UserID:      userID,
		UserName:    userName,
		RoomID:      NilRoomID,
		Conn:        conn,
		SendChannel: make(chan []byte, 256),
		Hub:         hub,
	}
}

// ReadPump: reads control messages (join/leave) from the peer until the
// connection dies, then unregisters the client. Every connection gets exactly
// one ReadPump goroutine.
func (c *Client) ReadPump() {
	defer c.Hub.Unregister(c)

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Unexpected close", "client_id", c.ID, "error", err)
			}
			return
		}

		msg, err := MessageFromJSON(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoin:
			if msg.AnimeID != NilRoomID {
				c.Hub.JoinRoom(c, msg.AnimeID)
			}
		case TypeLeave:
			c.Hub.LeaveRoom(c)
		default:
			// clients only drive the control plane; mutations go through REST
			slog.Warn("Ignoring unexpected message type", "client_id", c.ID, "type", msg.Type)
		}
	}
}

// WritePump: drains the send channel to the peer and keeps the heartbeat
// going. Every connection gets exactly one WritePump goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.SendChannel:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				// hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close: closes the send channel once; WritePump then closes the connection
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.SendChannel)
	})
}
