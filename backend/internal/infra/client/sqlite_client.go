package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewGORMSQLite opens (creating if needed) the SQLite file at path.
// A single open connection keeps writes serialised.
func NewGORMSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, *sql.DB, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path)
	gormDB, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open gorm sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return gormDB, sqlDB, nil
}
