package process

import (
	"context"
	"errors"
	"testing"

	domain "process-entry-app/backend/internal/domain/process"

	"gorm.io/gorm"
)

type stubReader struct {
	records  []domain.Record
	findErr  error
	lastList int
}

func (s *stubReader) FindByID(_ context.Context, id string) (*domain.Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReader) List(_ context.Context, limit int) ([]domain.Record, error) {
	s.lastList = limit
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *stubReader) Count(context.Context) (int64, error) {
	return int64(len(s.records)), nil
}

func TestQueryGet(t *testing.T) {
	reader := &stubReader{records: []domain.Record{{ID: "a", LotNumber: 1}}}
	q := NewQuery(reader)

	record, err := q.Get(context.Background(), "a")
	if err != nil || record.LotNumber != 1 {
		t.Fatalf("unexpected result: %+v %v", record, err)
	}

	if _, err := q.Get(context.Background(), "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := q.Get(context.Background(), "  "); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for blank id, got %v", err)
	}

	reader.findErr = errors.New("disk I/O error")
	if _, err := q.Get(context.Background(), "a"); err == nil || errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestQueryRecentClampsLimit(t *testing.T) {
	reader := &stubReader{}
	q := NewQuery(reader)

	result, err := q.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if reader.lastList != defaultListLimit || result.Limit != defaultListLimit {
		t.Fatalf("expected default limit, got %d", reader.lastList)
	}
	if result.Records == nil {
		t.Fatalf("records must be an empty slice, not nil")
	}

	if _, err := q.Recent(context.Background(), 10_000); err != nil {
		t.Fatalf("recent: %v", err)
	}
	if reader.lastList != maxListLimit {
		t.Fatalf("expected clamp to %d, got %d", maxListLimit, reader.lastList)
	}
}
