package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"process-entry-app/backend/internal/config"
	"process-entry-app/backend/internal/domain/process"
	"process-entry-app/backend/internal/infra/bus"
	"process-entry-app/backend/internal/infra/client"
	appLogger "process-entry-app/backend/internal/infra/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Resources owns the long-lived handles: the record store, the bus and an
// optional Redis client shared by the submit throttle.
type Resources struct {
	Config config.RuntimeConfig
	DB     *gorm.DB
	SQL    *sql.DB
	Bus    bus.Publisher
	Redis  *redis.Client
}

// InitResources loads configuration and opens the store and the bus.
func InitResources(ctx context.Context) (*Resources, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return Open(ctx, cfg)
}

// InitStore loads configuration and opens only the store. Read-only tools use
// it so they run without a reachable bus.
func InitStore(ctx context.Context) (*Resources, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return OpenStore(ctx, cfg)
}

// OpenStore opens the configured store and creates the schema when missing.
// Bus and Redis stay nil.
func OpenStore(ctx context.Context, cfg config.RuntimeConfig) (*Resources, error) {
	res := &Resources{Config: cfg}

	gormCfg := &gorm.Config{Logger: logger.New(
		stdlog.New(os.Stderr, "", stdlog.LstdFlags),
		logger.Config{SlowThreshold: 200 * time.Millisecond, LogLevel: logger.Warn},
	)}

	var err error
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		res.DB, res.SQL, err = client.NewGORMMySQL(cfg.Store.MySQL, gormCfg)
	default:
		res.DB, res.SQL, err = client.NewGORMSQLite(cfg.Store.SQLitePath, gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	if err := res.DB.WithContext(ctx).AutoMigrate(&process.Record{}); err != nil {
		_ = res.SQL.Close()
		return nil, fmt.Errorf("auto migrate process records: %w", err)
	}
	return res, nil
}

// Open builds Resources from an explicit configuration. The schema is created
// when missing.
func Open(ctx context.Context, cfg config.RuntimeConfig) (*Resources, error) {
	log := appLogger.Component("app")
	res, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res.Bus, err = bus.New(ctx, cfg.Bus, appLogger.Component("bus"))
	if err != nil {
		_ = res.SQL.Close()
		return nil, fmt.Errorf("open %s bus: %w", cfg.Bus.Driver, err)
	}

	if cfg.Bus.Redis.Endpoint != "" && cfg.Throttle.Limit > 0 {
		res.Redis, err = client.NewRedisClient(ctx, cfg.Bus.Redis)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	log.Infow("resources ready",
		"store", cfg.Store.Driver,
		"bus", cfg.Bus.Driver,
		"timezone", cfg.Location.String(),
	)
	return res, nil
}

// Ping checks that the store is reachable.
func (r *Resources) Ping(ctx context.Context) error {
	if r == nil || r.SQL == nil {
		return errors.New("store not initialised")
	}
	return r.SQL.PingContext(ctx)
}

// Close releases Redis and the bus, then the store.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.Bus != nil {
		if err := r.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if r.SQL != nil {
		if err := r.SQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
