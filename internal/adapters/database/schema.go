package database

// sqliteSchema mirrors migrations/000001_init.up.sql for the embedded driver.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reviews (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id         INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	user_id         INTEGER NOT NULL DEFAULT 0,
	rating          INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	review_text     TEXT NOT NULL DEFAULT '',
	sentiment_score REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reviews_item ON reviews(item_id, created_at);

CREATE TABLE IF NOT EXISTS likes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	review_id  INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	user_id    INTEGER NOT NULL,
	like_type  INTEGER NOT NULL CHECK (like_type IN (1, -1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (review_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	review_id    INTEGER NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	user_id      INTEGER NOT NULL,
	comment_text TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scores (
	item_id      INTEGER PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
	score_value  REAL NOT NULL,
	last_updated DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS community_insights (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	product_name      TEXT NOT NULL UNIQUE,
	positive_keywords TEXT NOT NULL DEFAULT '[]',
	negative_keywords TEXT NOT NULL DEFAULT '[]',
	common_praise     TEXT,
	common_complaints TEXT,
	last_updated      DATETIME NOT NULL
);
`
