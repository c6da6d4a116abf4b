package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// statements are idempotent so Migrate can run on every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	// uniqueness lives in the schema, not in a check-then-insert:
	// a concurrent duplicate signup surfaces as a 23505 on insert.
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		user_id    UUID NOT NULL,
		image      TEXT NOT NULL DEFAULT '',
		floor      INT  NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS rooms_user_name_key ON rooms (user_id, name)`,

	`CREATE TABLE IF NOT EXISTS plants (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		room_id       UUID NOT NULL REFERENCES rooms (id),
		health_status TEXT NOT NULL,
		user_id       UUID NOT NULL,
		image         TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS plants_room_id_idx ON plants (room_id)`,
	`CREATE INDEX IF NOT EXISTS plants_user_id_idx ON plants (user_id)`,
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
