package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/observability"
)

type RoomsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRoomsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RoomsRepo {
	return &RoomsRepo{pool: pool, prom: prom}
}

func (r *RoomsRepo) Create(ctx context.Context, rm room.Room) (room.Room, error) {
	err := r.prom.ObserveDB("rooms.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO rooms (id, name, user_id, image, floor, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rm.ID, rm.Name, rm.UserID, rm.Image, rm.Floor, rm.CreatedAt, rm.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return room.Room{}, room.ErrNameTaken
		}

		return room.Room{}, err
	}

	return rm, nil
}

func (r *RoomsRepo) ListByUser(ctx context.Context, userID string) ([]room.Room, error) {
	var out []room.Room

	err := r.prom.ObserveDB("rooms.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, user_id, image, floor, created_at, updated_at
			 FROM rooms
			 WHERE user_id = $1
			 ORDER BY created_at ASC, id ASC`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]room.Room, 0)

		for rows.Next() {
			var rm room.Room

			err = rows.Scan(&rm.ID, &rm.Name, &rm.UserID, &rm.Image, &rm.Floor, &rm.CreatedAt, &rm.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, rm)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *RoomsRepo) GetByID(ctx context.Context, id, userID string) (room.Room, error) {
	var rm room.Room

	err := r.prom.ObserveDB("rooms.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, user_id, image, floor, created_at, updated_at
			 FROM rooms
			 WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&rm.ID, &rm.Name, &rm.UserID, &rm.Image, &rm.Floor, &rm.CreatedAt, &rm.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return room.Room{}, room.ErrNotFound
		}

		return room.Room{}, err
	}

	return rm, nil
}

// Update applies only the fields present in the request.
func (r *RoomsRepo) Update(ctx context.Context, id, userID string, req room.UpdateRoomRequest) (room.Room, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, userID}

	argsPosition := 3

	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argsPosition))
		args = append(args, *req.Name)
		argsPosition++
	}

	if req.Image != nil {
		sets = append(sets, fmt.Sprintf("image = $%d", argsPosition))
		args = append(args, *req.Image)
		argsPosition++
	}

	if req.Floor != nil {
		sets = append(sets, fmt.Sprintf("floor = $%d", argsPosition))
		args = append(args, *req.Floor)
		argsPosition++
	}

	query := `UPDATE rooms SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2
		 RETURNING id, name, user_id, image, floor, created_at, updated_at`

	var rm room.Room

	err := r.prom.ObserveDB("rooms.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).
			Scan(&rm.ID, &rm.Name, &rm.UserID, &rm.Image, &rm.Floor, &rm.CreatedAt, &rm.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return room.Room{}, room.ErrNotFound
		}

		if IsUniqueViolation(err) {
			return room.Room{}, room.ErrNameTaken
		}

		return room.Room{}, err
	}

	return rm, nil
}

// Delete removes the room and every plant linked to it in one
// transaction, returning the image filenames of the deleted plants so
// the caller can clean up the blob store best-effort afterwards.
func (r *RoomsRepo) Delete(ctx context.Context, id, userID string) ([]string, error) {
	var images []string

	err := r.prom.ObserveDB("rooms.delete", func() error {
		tx, err := r.pool.Begin(ctx)

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		var dummy string

		err = tx.QueryRow(ctx,
			`SELECT id FROM rooms WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&dummy)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return room.ErrNotFound
			}
			return err
		}

		rows, err := tx.Query(ctx,
			`DELETE FROM plants WHERE room_id = $1 RETURNING image`, id)

		if err != nil {
			return err
		}

		images = images[:0]

		for rows.Next() {
			var img string

			if err := rows.Scan(&img); err != nil {
				rows.Close()
				return err
			}

			if img != "" {
				images = append(images, img)
			}
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return nil, err
	}

	return images, nil
}
