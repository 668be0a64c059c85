package client

import (
	"database/sql"
	"fmt"
	"time"

	"process-entry-app/backend/internal/config"

	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const defaultMySQLParams = "charset=utf8mb4&parseTime=true&loc=UTC"

// NewGORMMySQL opens a GORM connection and returns both the ORM handle and the
// underlying *sql.DB so the caller owns its lifecycle.
func NewGORMMySQL(cfg config.MySQLConfig, gormCfg *gorm.Config) (*gorm.DB, *sql.DB, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	if gormCfg == nil {
		gormCfg = &gorm.Config{}
	}

	gormDB, err := gorm.Open(mysqlDriver.Open(dsn), gormCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open gorm mysql: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(60 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}

	return gormDB, sqlDB, nil
}

func validateMySQLConfig(cfg config.MySQLConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("mysql host is required")
	}
	if cfg.Username == "" {
		return fmt.Errorf("mysql username is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("mysql database is required")
	}
	return nil
}

// BuildMySQLDSN renders the DSN after validating required fields.
func BuildMySQLDSN(cfg config.MySQLConfig) (string, error) {
	if err := validateMySQLConfig(cfg); err != nil {
		return "", err
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	params := cfg.Params
	if params == "" {
		params = defaultMySQLParams
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		port,
		cfg.Database,
		params,
	), nil
}
