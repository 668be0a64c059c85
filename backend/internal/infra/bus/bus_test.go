package bus

import (
	"context"
	"testing"

	"process-entry-app/backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewMemoryWarnsMessagesDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub, err := New(context.Background(), config.BusConfig{Driver: config.BusMemory}, zap.New(core).Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	if got := logs.FilterMessageSnippet("messages are dropped").Len(); got != 1 {
		t.Fatalf("expected one dropped-messages warning, got %d", got)
	}
	if err := pub.Publish(context.Background(), "process_records/lot_number", []byte("1")); err != nil {
		t.Fatalf("memory publish must still succeed: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), config.BusConfig{Driver: "carrier-pigeon"}, nil); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
