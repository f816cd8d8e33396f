package websocket

import (
	"context"

	"carebridge-chat/internal/events"
)

// RedisBridge forwards change events from the Redis bus to subscribed
// WebSocket clients.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context, channels []string) error {
	return b.subscriber.Subscribe(ctx, channels, func(channel string, payload []byte) {
		b.hub.Broadcast(channel, payload)
	})
}
