// Package testdb provides seeded catalog databases for tests.
package testdb

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/catalog-ranker/internal/adapters/database"
)

// TestDB wraps a database opened for one test
type TestDB struct {
	*database.DB
	t *testing.T
}

// Setup opens a private in-memory SQLite database with the catalog schema.
// It is closed when the test ends.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	})

	return &TestDB{DB: db, t: t}
}

// postgresLockKey is the advisory lock that serializes test packages
// sharing TEST_DATABASE_URL
const postgresLockKey = 727101

// Each runs fn against a fresh SQLite database and, when TEST_DATABASE_URL
// is set, against Postgres
func Each(t *testing.T, fn func(t *testing.T, db *TestDB)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, Setup(t))
	})
	t.Run("postgres", func(t *testing.T) {
		fn(t, SetupPostgres(t))
	})
}

// SetupPostgres connects to TEST_DATABASE_URL, migrates it and truncates
// the catalog tables after the test. Skips when the variable is unset.
// The database is held under an advisory lock until cleanup.
func SetupPostgres(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	ctx := context.Background()
	guard, err := conn.Conn(ctx)
	if err != nil {
		conn.Close()
		t.Fatalf("failed to reserve test database connection: %v", err)
	}
	if _, err := guard.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, postgresLockKey); err != nil {
		guard.Close()
		conn.Close()
		t.Fatalf("failed to lock test database: %v", err)
	}

	t.Cleanup(func() {
		if _, err := conn.Exec(`TRUNCATE community_insights, scores, comments, likes, reviews, items RESTART IDENTITY CASCADE`); err != nil {
			t.Logf("warning: failed to truncate test tables: %v", err)
		}
		if _, err := guard.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, postgresLockKey); err != nil {
			t.Logf("warning: failed to unlock test database: %v", err)
		}
		guard.Close()
		conn.Close()
	})

	db := database.Wrap(conn, "postgres")
	if err := db.RunMigrations(migrationsDir()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// rows left behind by an interrupted run
	if _, err := conn.Exec(`TRUNCATE community_insights, scores, comments, likes, reviews, items RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to reset test tables: %v", err)
	}

	return &TestDB{DB: db, t: t}
}

// InsertItem creates an item and returns its id
func (tdb *TestDB) InsertItem(title, description string) int64 {
	tdb.t.Helper()
	return tdb.insert(`INSERT INTO items (title, description) VALUES (?, ?) RETURNING id`, title, description)
}

// InsertReview creates a review and returns its id
func (tdb *TestDB) InsertReview(itemID int64, rating int, sentiment float64, text string, at time.Time) int64 {
	tdb.t.Helper()
	return tdb.insert(`
		INSERT INTO reviews (item_id, rating, review_text, sentiment_score, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id
	`, itemID, rating, text, sentiment, at.UTC())
}

// InsertLike records a like (1) or dislike (-1) on a review
func (tdb *TestDB) InsertLike(reviewID, userID int64, likeType int) {
	tdb.t.Helper()
	tdb.insert(`INSERT INTO likes (review_id, user_id, like_type) VALUES (?, ?, ?) RETURNING id`, reviewID, userID, likeType)
}

// InsertComment adds a comment under a review
func (tdb *TestDB) InsertComment(reviewID, userID int64, text string) {
	tdb.t.Helper()
	tdb.insert(`INSERT INTO comments (review_id, user_id, comment_text) VALUES (?, ?, ?) RETURNING id`, reviewID, userID, text)
}

// Exec runs a statement written with '?' placeholders
func (tdb *TestDB) Exec(query string, args ...interface{}) {
	tdb.t.Helper()
	if _, err := tdb.DB.DB().Exec(tdb.DB.DB().Rebind(query), args...); err != nil {
		tdb.t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

func (tdb *TestDB) insert(query string, args ...interface{}) int64 {
	tdb.t.Helper()

	var id int64
	if err := tdb.DB.DB().Get(&id, tdb.DB.DB().Rebind(query), args...); err != nil {
		tdb.t.Fatalf("insert failed: %v\nquery: %s", err, query)
	}
	return id
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
