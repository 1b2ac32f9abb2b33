package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS saves (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		size        INTEGER NOT NULL,
		mode        TEXT NOT NULL,
		human_side  TEXT NOT NULL,
		level       INTEGER NOT NULL,
		budget_ms   BIGINT NOT NULL,
		moves       INTEGER[] NOT NULL,
		board       BYTEA NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS saves_created_at_idx ON saves (created_at DESC);
`

// InitPostgres initializes the database connection and creates missing tables.
func InitPostgres(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if err = Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables used by the repositories. It is safe to run more than once.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}
