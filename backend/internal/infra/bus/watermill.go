package bus

import (
	"context"
	"fmt"
	"time"

	"process-entry-app/backend/internal/infra/ids"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Metadata keys attached to every watermill message.
const (
	MetadataContentType = "content_type"
	MetadataPublishedAt = "published_at"
)

// NATSPublisherFactory can be replaced in tests.
var NATSPublisherFactory = func(cfg wmnats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return wmnats.NewPublisher(cfg, logger)
}

// WatermillPublisher adapts a watermill message.Publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher wraps an existing watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// NewNATSPublisher publishes to core NATS; topics become subjects.
func NewNATSPublisher(url string, log *zap.SugaredLogger) (*WatermillPublisher, error) {
	publisher, err := NATSPublisherFactory(
		wmnats.PublisherConfig{
			URL:         url,
			NatsOptions: []natsgo.Option{natsgo.Name("process-entry")},
			Marshaler:   &wmnats.NATSMarshaler{},
			JetStream:   wmnats.JetStreamConfig{Disabled: true},
		},
		NewZapLoggerAdapter(log),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewWatermillPublisher(publisher), nil
}

// NewMemoryPubSub returns an in-process publisher and the subscriber side of
// the same channel.
func NewMemoryPubSub(log *zap.SugaredLogger) (*WatermillPublisher, message.Subscriber) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, NewZapLoggerAdapter(log))
	return NewWatermillPublisher(pubSub), pubSub
}

func (p *WatermillPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if p == nil || p.publisher == nil {
		return ErrClosed
	}

	msg := message.NewMessage(ids.NewMessageID(), payload)
	msg.Metadata.Set(MetadataContentType, "application/json")
	msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))
	if ctx != nil {
		msg.SetContext(ctx)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *WatermillPublisher) Close() error {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher.Close()
}
