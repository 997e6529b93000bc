package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema es idempotente: se puede correr en cada deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT,
		name             TEXT NOT NULL,
		species          TEXT NOT NULL,
		breed            TEXT NOT NULL,
		age              TEXT NOT NULL,
		gender           TEXT NOT NULL,
		location         TEXT NOT NULL,
		listing_type     TEXT NOT NULL,
		price            DOUBLE PRECISION,
		description      TEXT NOT NULL,
		image_url        TEXT NOT NULL,
		reporter_contact TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		CONSTRAINT listings_price_iff_sale CHECK ((listing_type = 'Sale') = (price IS NOT NULL AND price >= 0))
	)`,
	`CREATE INDEX IF NOT EXISTS listings_type_created_idx ON listings (listing_type, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS listings_owner_created_idx ON listings (owner_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL,
		image_url    TEXT NOT NULL,
		owner_id     TEXT NOT NULL,
		member_ids   JSONB NOT NULL DEFAULT '[]'::jsonb,
		member_count INTEGER NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_messages (
		seq         BIGSERIAL PRIMARY KEY,
		id          TEXT NOT NULL UNIQUE,
		group_id    TEXT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
		sender_id   TEXT NOT NULL,
		sender_name TEXT NOT NULL,
		avatar_url  TEXT NOT NULL,
		text        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS group_messages_group_created_idx ON group_messages (group_id, created_at, seq)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id            TEXT PRIMARY KEY,
		author_id     TEXT NOT NULL,
		author_name   TEXT NOT NULL,
		author_avatar TEXT NOT NULL,
		body          TEXT NOT NULL,
		image_url     TEXT NOT NULL DEFAULT '',
		liked_by      JSONB NOT NULL DEFAULT '[]'::jsonb,
		comments      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS posts_created_idx ON posts (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		user_id      TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		email        TEXT NOT NULL DEFAULT '',
		avatar_url   TEXT NOT NULL,
		is_admin     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate crea tablas e índices si no existen.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
