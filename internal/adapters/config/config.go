package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Database drivers supported by the store
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents application configuration
type Config struct {
	Database   DatabaseConfig   `envconfig:"DB"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Scoring    ScoringConfig    `envconfig:"SCORING"`
	Lexicon    LexiconConfig    `envconfig:"LEXICON"`
	Logging    LoggingConfig    `envconfig:"LOG"`
	Server     ServerConfig     `envconfig:"SERVER"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Driver         string `envconfig:"DB_DRIVER" default:"postgres"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"catalog"`
	User           string `envconfig:"DB_USER" default:"catalog"`
	Password       string `envconfig:"DB_PASSWORD" default:""`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath     string `envconfig:"DB_SQLITE_PATH" default:"data/catalog.db"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
	MaxOpenConns   int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
}

// RedisConfig enables the cross-process recompute lock
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"30s"`
}

// ClickHouseConfig represents the score history sink
type ClickHouseConfig struct {
	Enabled       bool          `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host          string        `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port          int           `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database      string        `envconfig:"CLICKHOUSE_DATABASE" default:"catalog"`
	User          string        `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password      string        `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	BatchSize     int           `envconfig:"CLICKHOUSE_BATCH_SIZE" default:"500"`
	FlushInterval time.Duration `envconfig:"CLICKHOUSE_FLUSH_INTERVAL" default:"10s"`
}

// ScoringConfig represents score cache parameters
type ScoringConfig struct {
	FreshnessWindow time.Duration `envconfig:"SCORING_FRESHNESS_WINDOW" default:"1h"`
	SweepInterval   time.Duration `envconfig:"SCORING_SWEEP_INTERVAL" default:"15m"`
	SweepBatchSize  int           `envconfig:"SCORING_SWEEP_BATCH_SIZE" default:"100"`
	SweepEnabled    bool          `envconfig:"SCORING_SWEEP_ENABLED" default:"true"`
}

// LexiconConfig points at the sentiment word lists
type LexiconConfig struct {
	PositivePath string `envconfig:"LEXICON_POSITIVE_PATH" default:"data/positive.txt"`
	NegativePath string `envconfig:"LEXICON_NEGATIVE_PATH" default:"data/negative.txt"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// ServerConfig represents the health/metrics HTTP server
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for postgres")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be at least 1")
	}

	if c.Scoring.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive")
	}
	if c.Scoring.SweepEnabled {
		if c.Scoring.SweepInterval <= 0 {
			return fmt.Errorf("sweep interval must be positive")
		}
		if c.Scoring.SweepBatchSize < 1 {
			return fmt.Errorf("sweep batch size must be at least 1")
		}
	}

	if c.Redis.Enabled && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis lock ttl must be positive")
	}

	if c.ClickHouse.Enabled {
		if c.ClickHouse.BatchSize < 1 {
			return fmt.Errorf("clickhouse batch size must be at least 1")
		}
		if c.ClickHouse.FlushInterval <= 0 {
			return fmt.Errorf("clickhouse flush interval must be positive")
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 0 and 65535")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database)
}
