package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Scoring.FreshnessWindow)
	assert.Equal(t, "data/positive.txt", cfg.Lexicon.PositivePath)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.ClickHouse.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/ranker.db")
	t.Setenv("SCORING_FRESHNESS_WINDOW", "30m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/ranker.db", cfg.Database.SQLitePath)
	assert.Equal(t, 30*time.Minute, cfg.Scoring.FreshnessWindow)
	assert.Equal(t, "localhost:6380", cfg.Redis.GetAddr())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db", MaxOpenConns: 1},
			Scoring:  ScoringConfig{FreshnessWindow: time.Hour},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"zero window", func(c *Config) { c.Scoring.FreshnessWindow = 0 }},
		{"sweep without interval", func(c *Config) { c.Scoring.SweepEnabled = true; c.Scoring.SweepBatchSize = 10 }},
		{"clickhouse without batch", func(c *Config) { c.ClickHouse.Enabled = true; c.ClickHouse.FlushInterval = time.Second }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "catalog", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=catalog sslmode=disable", db.GetDSN())

	ch := ClickHouseConfig{Host: "ch", Port: 9000, User: "default", Database: "catalog"}
	assert.Equal(t, "clickhouse://default:@ch:9000/catalog", ch.GetDSN())
}
