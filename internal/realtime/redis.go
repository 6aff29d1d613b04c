package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultChannel = "eventhub:push"
	publishTimeout = 3 * time.Second
)

type envelope struct {
	Event   string          `json:"event"`
	Target  string          `json:"target,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// RedisPublisher sends push events through a Redis channel so every API
// instance relays them to its own stream clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, logger *slog.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Publish is fire and forget. Failures are logged and dropped.
func (p *RedisPublisher) Publish(event string, payload any, target string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("Failed to encode push event", "event", event, "error", err)
		return
	}
	data, err := json.Marshal(envelope{Event: event, Target: target, Payload: raw})
	if err != nil {
		p.logger.Warn("Failed to encode push envelope", "event", event, "error", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
			p.logger.Warn("Failed to publish push event", "event", event, "error", err)
		}
	}()
}

// Relay forwards everything on the channel into hub until ctx is done.
func (p *RedisPublisher) Relay(ctx context.Context, hub *Hub) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				p.logger.Warn("Dropped malformed push message", "error", err)
				continue
			}
			hub.Publish(env.Event, env.Payload, env.Target)
		}
	}
}
