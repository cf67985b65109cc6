package commentfeed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ChannelClient is the realtime side of the feed. The websocket
// implementation below is the real one; the feed takes the interface so tests
// can drive events directly.
type ChannelClient interface {
	Join(animeID int64) error
	Leave(animeID int64) error
	Events() <-chan Event
	Close() error
}

// wire envelope matching the server's websocket message shape
type channelMessage struct {
	Type      string   `json:"type"`
	AnimeID   int64    `json:"anime_id,omitempty"`
	Comment   *Comment `json:"comment,omitempty"`
	CommentID string   `json:"comment_id,omitempty"`
}

// WSChannel is a websocket ChannelClient with automatic reconnect. On
// reconnect it re-joins the room it was in; joins do not survive a dropped
// connection on the server side.
type WSChannel struct {
	url    string
	token  string
	events chan Event

	mu       sync.Mutex
	conn     *websocket.Conn
	joinedTo int64 // current room, 0 when none
	closed   bool
	done     chan struct{}
}

// NewWSChannel dials the server's /ws endpoint
func NewWSChannel(wsURL, token string) (*WSChannel, error) {
	c := &WSChannel{
		url:    wsURL,
		token:  token,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn = conn

	go c.readLoop()
	return c, nil
}

func (c *WSChannel) dial() (*websocket.Conn, error) {
	header := http.Header{}
	header.Add("Authorization", "Bearer "+c.token)

	conn, _, err := websocket.DefaultDialer.Dial(c.url, header)
	return conn, err
}

// Join subscribes to one anime's comment events
func (c *WSChannel) Join(animeID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joinedTo = animeID
	return c.conn.WriteJSON(map[string]any{
		"type":     "join",
		"anime_id": animeID,
	})
}

// Leave unsubscribes; the server drops the client from the room
func (c *WSChannel) Leave(animeID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joinedTo = 0
	return c.conn.WriteJSON(map[string]any{
		"type":     "leave",
		"anime_id": animeID,
	})
}

// Events returns the stream of comment events for the joined room
func (c *WSChannel) Events() <-chan Event {
	return c.events
}

// Close tears the connection down and stops reconnecting
func (c *WSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// readLoop decodes events and feeds them to the consumer. On a read error it
// redials with backoff and re-joins the previous room.
func (c *WSChannel) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.currentConn().ReadMessage()
		if err != nil {
			if !c.reconnect() {
				return
			}
			continue
		}

		var msg channelMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("Dropping undecodable channel message", "error", err)
			continue
		}

		var ev Event
		switch msg.Type {
		case string(EventCreated):
			ev = Event{Kind: EventCreated, Comment: msg.Comment}
		case string(EventUpdated):
			ev = Event{Kind: EventUpdated, Comment: msg.Comment}
		case string(EventDeleted):
			ev = Event{Kind: EventDeleted, CommentID: msg.CommentID}
		default:
			continue // system notices etc.
		}

		select {
		case c.events <- ev:
		default:
			// consumer stalled; drop rather than block the read loop. The
			// cache merge is id-keyed so a dropped event only delays
			// convergence until the next event or refetch.
			slog.Warn("Event buffer full, dropping", "kind", ev.Kind)
		}
	}
}

func (c *WSChannel) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// reconnect redials until it succeeds or the channel is closed, then
// re-issues the join for the room the consumer was in. Returns false when
// closed for good.
func (c *WSChannel) reconnect() bool {
	backoff := time.Second
	for {
		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		conn, err := c.dial()
		if err != nil {
			slog.Warn("Reconnect failed", "error", err)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return false
		}
		c.conn = conn
		rejoin := c.joinedTo
		c.mu.Unlock()

		if rejoin != 0 {
			c.mu.Lock()
			c.conn.WriteJSON(map[string]any{"type": "join", "anime_id": rejoin})
			c.mu.Unlock()
		}
		slog.Info("Channel reconnected", "rejoined_room", rejoin)
		return true
	}
}
