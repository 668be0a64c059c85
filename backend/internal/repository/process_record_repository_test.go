package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"process-entry-app/backend/internal/domain/process"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) (*ProcessRecordRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&process.Record{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return NewProcessRecordRepository(db), db
}

func sampleRecord(id string, createdAt time.Time) *process.Record {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(30*time.Minute + 15*time.Second)
	return &process.Record{
		ID:               id,
		LotNumber:        42,
		RecordCreatedAt:  createdAt,
		ProcessStartTime: start,
		ProcessEndTime:   end,
		ProcessDuration:  int64(end.Sub(start) / time.Second),
	}
}

func TestProcessRecordCreateAndFind(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, sampleRecord("0b6c3c8e-7c1f-4d5e-9c3b-1f1f7d3e2a10", created)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByID(ctx, "0b6c3c8e-7c1f-4d5e-9c3b-1f1f7d3e2a10")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.LotNumber != 42 || got.ProcessDuration != 1815 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.RecordCreatedAt.Equal(created) {
		t.Fatalf("created timestamp mismatch: want %s got %s", created, got.RecordCreatedAt)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestProcessRecordCreateRejectsDuplicateID(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	record := sampleRecord("dup", time.Now().UTC())
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.Create(ctx, sampleRecord("dup", time.Now().UTC())); err == nil {
		t.Fatalf("expected primary key violation")
	}

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("failed insert must not leave partial state, count=%d", total)
	}
}

func TestProcessRecordListNewestFirst(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", all)
	}

	limited, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records, got %d", len(limited))
	}
}
