package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cross-instance fan-out over Redis pub/sub. Every API instance publishes the
// comment events it originates and replays events from other instances into
// its local rooms, so clients connected to different instances stay in sync.

const bridgeChannel = "animehub:comment-events"

type bridgeEnvelope struct {
	Origin  string   `json:"origin"` // instance that produced the event
	Message *Message `json:"message"`
}

type RedisBridge struct {
	client     *redis.Client
	instanceID string
	hub        *Hub
}

// NewRedisBridge connects to Redis and wires the bridge into the hub
func NewRedisBridge(redisURL, password string, hub *Hub) (*RedisBridge, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	b := &RedisBridge{
		client:     rdb,
		instanceID: uuid.New().String(),
		hub:        hub,
	}
	hub.SetBridge(b)
	return b, nil
}

// Publish sends a locally originated event to the shared channel
func (b *RedisBridge) Publish(msg *Message) error {
	data, err := json.Marshal(bridgeEnvelope{
		Origin:  b.instanceID,
		Message: msg,
	})
	if err != nil {
		return err
	}
	return b.client.Publish(context.Background(), bridgeChannel, data).Err()
}

// Run subscribes to the shared channel and replays foreign events into local
// rooms until ctx is done. Events this instance published are skipped; the
// hub already delivered them locally.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	ch := sub.Channel()
	slog.Info("Redis bridge subscribed", "channel", bridgeChannel, "instance_id", b.instanceID)

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var env bridgeEnvelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				slog.Error("Failed to decode bridge envelope", "error", err)
				continue
			}
			if env.Origin == b.instanceID || env.Message == nil {
				continue
			}
			b.hub.broadcastLocal(env.Message)
		}
	}
}

// Close releases the redis connection
func (b *RedisBridge) Close() error {
	return b.client.Close()
}
