package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisPublisherDeliversToSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pub := NewRedisPublisher(rdb)
	t.Cleanup(func() { _ = pub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = listener.Close() })
	sub := listener.Subscribe(ctx, "process_records/process_duration")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := pub.Publish(ctx, "process_records/process_duration", []byte(`{"process_duration":1815}`)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Channel != "process_records/process_duration" || msg.Payload != `{"process_duration":1815}` {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestRedisPublisherReportsConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	pub := NewRedisPublisher(rdb)
	t.Cleanup(func() { _ = pub.Close() })

	mr.Close()

	if err := pub.Publish(context.Background(), "process_records/lot_number", []byte("{}")); err == nil {
		t.Fatalf("expected error once the server is gone")
	}
	if err := pub.Publish(context.Background(), "", nil); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("expected ErrTopicRequired, got %v", err)
	}
}
