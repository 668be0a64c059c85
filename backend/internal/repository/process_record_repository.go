package repository

import (
	"context"

	"process-entry-app/backend/internal/domain/process"

	"gorm.io/gorm"
)

// ProcessRecordRepository wraps the process_records table.
type ProcessRecordRepository struct {
	db *gorm.DB
}

// NewProcessRecordRepository builds the repository.
func NewProcessRecordRepository(db *gorm.DB) *ProcessRecordRepository {
	return &ProcessRecordRepository{db: db}
}

// Create inserts the record and commits in one transaction.
func (r *ProcessRecordRepository) Create(ctx context.Context, record *process.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
}

// FindByID returns gorm.ErrRecordNotFound when the id is unknown.
func (r *ProcessRecordRepository) FindByID(ctx context.Context, id string) (*process.Record, error) {
	var record process.Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns the newest records first; limit <= 0 returns all.
func (r *ProcessRecordRepository) List(ctx context.Context, limit int) ([]process.Record, error) {
	var records []process.Record

	query := r.db.WithContext(ctx).
		Model(&process.Record{}).
		Order("todays_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored records.
func (r *ProcessRecordRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&process.Record{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
