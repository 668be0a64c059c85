package process

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "process-entry-app/backend/internal/domain/process"

	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ErrRecordNotFound is returned when a record id is unknown.
var ErrRecordNotFound = errors.New("process record not found")

// RecordReader is the read side of the store.
type RecordReader interface {
	FindByID(ctx context.Context, id string) (*domain.Record, error)
	List(ctx context.Context, limit int) ([]domain.Record, error)
	Count(ctx context.Context) (int64, error)
}

// Query serves read-only lookups over stored records.
type Query struct {
	reader RecordReader
}

// NewQuery builds a Query.
func NewQuery(reader RecordReader) *Query {
	return &Query{reader: reader}
}

// Get returns one record by id.
func (q *Query) Get(ctx context.Context, id string) (domain.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Record{}, ErrRecordNotFound
	}

	record, err := q.reader.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Record{}, ErrRecordNotFound
		}
		return domain.Record{}, fmt.Errorf("find process record: %w", err)
	}
	return *record, nil
}

// RecentResult is a page of the newest records plus the table size.
type RecentResult struct {
	Records []domain.Record
	Limit   int
	Total   int64
}

// Recent lists the newest records. limit <= 0 means the default; values above
// the maximum are clamped.
func (q *Query) Recent(ctx context.Context, limit int) (RecentResult, error) {
	limit = normalizeLimit(limit)

	records, err := q.reader.List(ctx, limit)
	if err != nil {
		return RecentResult{}, fmt.Errorf("list process records: %w", err)
	}
	total, err := q.reader.Count(ctx)
	if err != nil {
		return RecentResult{}, fmt.Errorf("count process records: %w", err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return RecentResult{Records: records, Limit: limit, Total: total}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
