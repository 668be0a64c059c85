package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher uses Redis PUBLISH; the topic is the channel name.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher takes ownership of rdb; Close closes it.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if p == nil || p.client == nil {
		return ErrClosed
	}
	if err := p.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
