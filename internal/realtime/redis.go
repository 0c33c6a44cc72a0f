package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type envelope struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
}

// RedisBridge fans events out across server instances. Publish goes through
// Redis only; every instance, including the publisher, delivers to its local
// hub when the message comes back from the subscription.
type RedisBridge struct {
	client *redis.Client
	topic  string
	hub    *Hub
	log    *zap.SugaredLogger
}

// ConnectRedis initializes a Redis client from URL or host:port input.
func ConnectRedis(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func NewRedisBridge(client *redis.Client, topic string, hub *Hub, log *zap.SugaredLogger) *RedisBridge {
	return &RedisBridge{
		client: client,
		topic:  topic,
		hub:    hub,
		log:    log,
	}
}

func (b *RedisBridge) Publish(ctx context.Context, channel string, evt Event) error {
	payload, err := encodeEnvelope(channel, evt)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run relays messages from Redis into the local hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.topic)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.topic, err)
	}
	b.log.Infow("realtime redis bridge subscribed", "topic", b.topic)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			channel, evt, err := decodeEnvelope(msg.Payload)
			if err != nil {
				b.log.Warnw("dropping malformed fan-out message", "error", err)
				continue
			}
			_ = b.hub.Publish(ctx, channel, evt)
		}
	}
}

func encodeEnvelope(channel string, evt Event) ([]byte, error) {
	payload, err := json.Marshal(envelope{Channel: channel, Event: evt})
	if err != nil {
		return nil, fmt.Errorf("encode fan-out message: %w", err)
	}
	return payload, nil
}

func decodeEnvelope(payload string) (string, Event, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return "", Event{}, err
	}
	if env.Channel == "" || env.Event.Name == "" {
		return "", Event{}, fmt.Errorf("missing channel or event name")
	}
	return env.Channel, env.Event, nil
}
