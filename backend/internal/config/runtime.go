package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// StoreSQLite keeps records in a local SQLite file.
	StoreSQLite = "sqlite"
	// StoreMySQL keeps records in a MySQL database.
	StoreMySQL = "mysql"

	// BusMQTT publishes to an MQTT broker.
	BusMQTT = "mqtt"
	// BusRedis publishes through Redis PUBLISH.
	BusRedis = "redis"
	// BusNATS publishes to core NATS subjects.
	BusNATS = "nats"
	// BusMemory publishes to an in-process channel with no subscribers, so
	// every field message is dropped. Meant for local runs and tests.
	BusMemory = "memory"

	defaultServerPort     = "8080"
	defaultSQLiteRelPath  = "data/process_records.db"
	defaultMySQLPort      = 3306
	defaultMySQLParams    = "charset=utf8mb4&parseTime=true&loc=UTC"
	defaultMQTTBroker     = "localhost"
	defaultMQTTPort       = 1884
	defaultMQTTKeepAlive  = 60 * time.Second
	defaultNATSURL        = "nats://127.0.0.1:4222"
	defaultPublishTimeout = 5 * time.Second
	defaultSubmitLimit    = 30
	defaultSubmitWindow   = time.Minute
)

// RuntimeConfig gathers everything the process needs at startup.
type RuntimeConfig struct {
	Port      string
	Location  *time.Location
	StaticDir string
	Store     StoreConfig
	Bus       BusConfig
	Throttle  ThrottleConfig
}

// ThrottleConfig bounds submissions per client IP. Limit 0 disables it.
// Counters live in Redis when REDIS_ENDPOINT is set, in memory otherwise.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
}

// StoreConfig selects and parameterises the relational store.
type StoreConfig struct {
	Driver     string
	SQLitePath string
	MySQL      MySQLConfig
}

// MySQLConfig holds the connection details used when Driver is mysql.
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Params   string
}

// BusConfig selects and parameterises the message bus.
type BusConfig struct {
	Driver         string
	PublishTimeout time.Duration
	MQTT           MQTTConfig
	Redis          RedisConfig
	NATSURL        string
}

// MQTTConfig describes the broker connection for the mqtt driver.
type MQTTConfig struct {
	Broker    string
	Port      int
	ClientID  string
	Username  string
	Password  string
	KeepAlive time.Duration
}

// RedisConfig describes the connection for the redis driver.
type RedisConfig struct {
	Endpoint string
	Password string
	DB       int
}

// Load reads env files and environment variables into a RuntimeConfig.
func Load() (RuntimeConfig, error) {
	LoadEnvFiles()

	loc, err := loadLocation(envString("PROCESS_TIMEZONE", "Local"))
	if err != nil {
		return RuntimeConfig{}, err
	}

	cfg := RuntimeConfig{
		Port:      envString("SERVER_PORT", defaultServerPort),
		Location:  loc,
		StaticDir: envString("STATIC_DIR", ""),
		Store: StoreConfig{
			Driver:     strings.ToLower(envString("STORE_DRIVER", StoreSQLite)),
			SQLitePath: normalisePath(envString("SQLITE_PATH", defaultSQLiteRelPath)),
			MySQL: MySQLConfig{
				Host:     envString("MYSQL_HOST", ""),
				Port:     envInt("MYSQL_PORT", defaultMySQLPort),
				Username: envString("MYSQL_USERNAME", ""),
				Password: os.Getenv("MYSQL_PASSWORD"),
				Database: envString("MYSQL_DATABASE", ""),
				Params:   envString("MYSQL_PARAMS", defaultMySQLParams),
			},
		},
		Bus: BusConfig{
			Driver:         strings.ToLower(envString("BUS_DRIVER", BusMQTT)),
			PublishTimeout: envDuration("BUS_PUBLISH_TIMEOUT", defaultPublishTimeout),
			MQTT: MQTTConfig{
				Broker:    envString("MQTT_BROKER", defaultMQTTBroker),
				Port:      envInt("MQTT_PORT", defaultMQTTPort),
				ClientID:  envString("MQTT_CLIENT_ID", ""),
				Username:  envString("MQTT_USERNAME", ""),
				Password:  os.Getenv("MQTT_PASSWORD"),
				KeepAlive: envDuration("MQTT_KEEPALIVE", defaultMQTTKeepAlive),
			},
			Redis: RedisConfig{
				Endpoint: envString("REDIS_ENDPOINT", ""),
				Password: os.Getenv("REDIS_PASSWORD"),
				DB:       envInt("REDIS_DB", 0),
			},
			NATSURL: envString("NATS_URL", defaultNATSURL),
		},
		Throttle: ThrottleConfig{
			Limit:  envInt("SUBMIT_RATE_LIMIT", defaultSubmitLimit),
			Window: envDuration("SUBMIT_RATE_WINDOW", defaultSubmitWindow),
		},
	}

	if err := cfg.validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func (c RuntimeConfig) validate() error {
	switch c.Store.Driver {
	case StoreSQLite, StoreMySQL:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Bus.Driver {
	case BusMQTT, BusRedis, BusNATS, BusMemory:
	default:
		return fmt.Errorf("unsupported BUS_DRIVER %q", c.Bus.Driver)
	}
	if c.Throttle.Limit < 0 {
		return fmt.Errorf("SUBMIT_RATE_LIMIT must not be negative")
	}
	if c.Bus.Driver == BusRedis && c.Bus.Redis.Endpoint == "" {
		return fmt.Errorf("REDIS_ENDPOINT is required when BUS_DRIVER=redis")
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.ToLower(name) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid PROCESS_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// normalisePath expands ~ and makes the path absolute.
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
