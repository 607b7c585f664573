package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/selivandex/catalog-ranker/internal/adapters/config"
	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// DB wraps the catalog database connection
type DB struct {
	conn   *sqlx.DB
	driver string
}

// New opens the database selected by cfg.Driver.
// SQLite databases get the embedded schema applied on open; Postgres is
// migrated separately through RunMigrations.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverPostgres, "":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sqlx.Connect("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("database connection established",
		zap.String("driver", config.DriverPostgres),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return &DB{conn: conn, driver: config.DriverPostgres}, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies the schema.
// ":memory:" gives a private in-memory database on a single connection.
func OpenSQLite(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite serializes writers anyway; one connection also keeps an
	// in-memory database alive and shared.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	logger.Info("database connection established",
		zap.String("driver", config.DriverSQLite),
		zap.String("path", path),
	)

	return &DB{conn: conn, driver: config.DriverSQLite}, nil
}

// Close closes database connection
func (db *DB) Close() error {
	if db.conn != nil {
		logger.Info("closing database connection")
		return db.conn.Close()
	}
	return nil
}

// Conn returns underlying *sql.DB connection (for migrations)
func (db *DB) Conn() *sql.DB {
	return db.conn.DB
}

// DB returns sqlx.DB used by repositories
func (db *DB) DB() *sqlx.DB {
	return db.conn
}

// Driver returns the driver name the connection was opened with
func (db *DB) Driver() string {
	return db.driver
}

// Health checks database health
func (db *DB) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Wrap adopts an already opened connection
func Wrap(conn *sqlx.DB, driver string) *DB {
	return &DB{conn: conn, driver: driver}
}
