package bus

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAdapterForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	adapter := NewZapLoggerAdapter(zap.New(core).Sugar())

	adapter.With(watermill.LogFields{"topic": "process_records/lot_number"}).
		Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 1})
	adapter.Trace("trace line", nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["topic"] != "process_records/lot_number" {
		t.Fatalf("missing topic field: %v", fields)
	}
	if fields["error"] != "boom" {
		t.Fatalf("missing error field: %v", fields)
	}
	if entries[1].Level != zap.DebugLevel {
		t.Fatalf("trace should map to debug, got %s", entries[1].Level)
	}
}
