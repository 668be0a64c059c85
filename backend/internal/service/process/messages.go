package process

import (
	"fmt"
	"time"

	domain "process-entry-app/backend/internal/domain/process"
	"process-entry-app/backend/internal/infra/jsoncodec"
)

// FieldMessage is one bus message: a topic and its single-key JSON payload.
type FieldMessage struct {
	Field   string
	Topic   string
	Payload []byte
}

// FieldMessages builds the five per-field messages for a record in publish
// order. Timestamps are RFC 3339 with offset; the creation time is UTC.
func FieldMessages(record domain.Record) ([]FieldMessage, error) {
	values := map[string]any{
		domain.FieldLotNumber:        record.LotNumber,
		domain.FieldTodaysDate:       record.RecordCreatedAt.UTC().Format(time.RFC3339Nano),
		domain.FieldProcessStartTime: record.ProcessStartTime.Format(time.RFC3339),
		domain.FieldProcessEndTime:   record.ProcessEndTime.Format(time.RFC3339),
		domain.FieldProcessDuration:  record.ProcessDuration,
	}

	messages := make([]FieldMessage, 0, len(domain.Fields))
	for _, field := range domain.Fields {
		payload, err := jsoncodec.Marshal(map[string]any{field: values[field]})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field, err)
		}
		messages = append(messages, FieldMessage{
			Field:   field,
			Topic:   domain.Topic(field),
			Payload: payload,
		})
	}
	return messages, nil
}

// DecodeFieldMessage parses a payload produced by FieldMessages back into a
// typed value: int64 for numeric fields, time.Time for timestamps.
func DecodeFieldMessage(field string, payload []byte) (any, error) {
	switch field {
	case domain.FieldLotNumber, domain.FieldProcessDuration:
		var body map[string]int64
		if err := jsoncodec.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		v, ok := body[field]
		if !ok {
			return nil, fmt.Errorf("decode %s: key missing", field)
		}
		return v, nil
	case domain.FieldTodaysDate, domain.FieldProcessStartTime, domain.FieldProcessEndTime:
		var body map[string]string
		if err := jsoncodec.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		raw, ok := body[field]
		if !ok {
			return nil, fmt.Errorf("decode %s: key missing", field)
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}
