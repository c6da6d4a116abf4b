package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdantlab/planthub/internal/domain/user"
	"github.com/verdantlab/planthub/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

// NormalizeEmail fixes the lookup policy: emails are stored and
// compared lowercase.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// duplicate email surfaces from the unique index, not from
		// a racy pre-check
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			NormalizeEmail(email),
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}
