package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"barter/internal/domain"
)

// OpenDB opens the SQLite database and makes sure the schema exists.
// SQLite is single-writer; one pooled connection keeps ":memory:" databases
// shared and lets the driver serialise every write transaction.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_nocase ON users(LOWER(username));

-- Ads
CREATE TABLE IF NOT EXISTS ads(
  ad_id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  image_url TEXT,
  category TEXT NOT NULL,
  condition TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ads_user       ON ads(user_id);
CREATE INDEX IF NOT EXISTS idx_ads_category   ON ads(category);
CREATE INDEX IF NOT EXISTS idx_ads_condition  ON ads(condition);
CREATE INDEX IF NOT EXISTS idx_ads_created_at ON ads(created_at);

-- Exchange proposals. Ad ids are plain references: a decided proposal
-- outlives the ads it consumed.
CREATE TABLE IF NOT EXISTS exchange_proposals(
  exchange_id INTEGER PRIMARY KEY AUTOINCREMENT,
  ad_sender_id INTEGER NOT NULL,
  ad_receiver_id INTEGER NOT NULL,
  sender_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  receiver_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  comment TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
  created_at TEXT NOT NULL,
  CHECK (ad_sender_id <> ad_receiver_id)
);
CREATE INDEX IF NOT EXISTS idx_proposals_sender   ON exchange_proposals(sender_user_id);
CREATE INDEX IF NOT EXISTS idx_proposals_receiver ON exchange_proposals(receiver_user_id);
CREATE INDEX IF NOT EXISTS idx_proposals_status   ON exchange_proposals(status);
`
	_, err := db.Exec(schema)
	return err
}

// InTx runs fn in a transaction. fn's error, or a failed commit, rolls back
// everything fn wrote.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFound maps a missing row onto domain.ErrNotFound and passes other errors through.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return err
}
