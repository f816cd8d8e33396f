package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher delivers change events to a conversation channel. Writers publish
// after their row is committed; subscribers treat the event purely as a
// refresh trigger and refetch, so a lost event is repaired by the next poll.
type Publisher interface {
	Publish(ctx context.Context, channel string, env Envelope) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(ctx, channel, data).Err()
}
