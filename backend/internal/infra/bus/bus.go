// Package bus publishes small payloads onto a message bus. Every driver is
// fire-and-forget: a nil error means the message left this process, not that
// any consumer received it.
package bus

import (
	"context"
	"errors"
	"fmt"

	"process-entry-app/backend/internal/config"
	"process-entry-app/backend/internal/infra/client"

	"go.uber.org/zap"
)

var (
	// ErrTopicRequired is returned when Publish is called with an empty topic.
	ErrTopicRequired = errors.New("bus topic is required")
	// ErrPublishTimeout is returned when a driver could not hand a message off in time.
	ErrPublishTimeout = errors.New("bus publish timed out")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("bus publisher closed")
)

// Publisher sends one payload to one topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

// New builds the publisher selected by cfg.Driver.
func New(ctx context.Context, cfg config.BusConfig, log *zap.SugaredLogger) (Publisher, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	switch cfg.Driver {
	case config.BusMQTT, "":
		return NewMQTTPublisher(cfg.MQTT, cfg.PublishTimeout, log)
	case config.BusRedis:
		rdb, err := client.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisPublisher(rdb), nil
	case config.BusNATS:
		return NewNATSPublisher(cfg.NATSURL, log)
	case config.BusMemory:
		// Nothing in this process subscribes, so messages are discarded.
		pub, _ := NewMemoryPubSub(log)
		log.Warnw("memory bus has no subscribers; field messages are dropped", "driver", cfg.Driver)
		return pub, nil
	default:
		return nil, fmt.Errorf("unsupported bus driver %q", cfg.Driver)
	}
}
