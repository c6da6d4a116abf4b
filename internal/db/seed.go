package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/security"
)

// EnsureSeedUser creates a known account on startup when the seed env
// vars are set. Useful for dev and demo environments; a no-op when the
// account already exists.
func EnsureSeedUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedUserEmail == "" || cfg.SeedUserPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SeedUserEmail))

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedUserPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), cfg.SeedUserName, email, hash, now, now,
	)

	return err
}
