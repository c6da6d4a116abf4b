package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verdantlab/planthub/internal/domain/plant"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/observability"
)

type PlantsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPlantsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PlantsRepo {
	return &PlantsRepo{pool: pool, prom: prom}
}

func (r *PlantsRepo) Create(ctx context.Context, p plant.Plant) (plant.Plant, error) {
	err := r.prom.ObserveDB("plants.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO plants (id, name, room_id, health_status, user_id, image, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.Name, p.RoomID, p.HealthStatus, p.UserID, p.Image, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if err != nil {
		// the room_id FK rejects plants pointing at a missing room
		if IsForeignKeyViolation(err) {
			return plant.Plant{}, room.ErrNotFound
		}

		return plant.Plant{}, err
	}

	return p, nil
}

func (r *PlantsRepo) ListByUser(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error) {
	var out []plant.Plant

	err := r.prom.ObserveDB("plants.list_by_user", func() error {
		query := `SELECT id, name, room_id, health_status, user_id, image, created_at, updated_at
			 FROM plants
			 WHERE user_id = $1`

		args := []interface{}{userID}

		if roomID != nil {
			query += ` AND room_id = $2`
			args = append(args, *roomID)
		}

		query += ` ORDER BY created_at ASC, id ASC`

		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]plant.Plant, 0)

		for rows.Next() {
			var p plant.Plant

			err = rows.Scan(&p.ID, &p.Name, &p.RoomID, &p.HealthStatus, &p.UserID, &p.Image, &p.CreatedAt, &p.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *PlantsRepo) GetByID(ctx context.Context, id, userID string) (plant.Plant, error) {
	var p plant.Plant

	err := r.prom.ObserveDB("plants.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, room_id, health_status, user_id, image, created_at, updated_at
			 FROM plants
			 WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&p.ID, &p.Name, &p.RoomID, &p.HealthStatus, &p.UserID, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plant.Plant{}, plant.ErrNotFound
		}

		return plant.Plant{}, err
	}

	return p, nil
}

func (r *PlantsRepo) Update(ctx context.Context, id, userID string, req plant.UpdatePlantRequest) (plant.Plant, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, userID}

	argsPosition := 3

	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argsPosition))
		args = append(args, *req.Name)
		argsPosition++
	}

	if req.RoomID != nil {
		sets = append(sets, fmt.Sprintf("room_id = $%d", argsPosition))
		args = append(args, *req.RoomID)
		argsPosition++
	}

	if req.HealthStatus != nil {
		sets = append(sets, fmt.Sprintf("health_status = $%d", argsPosition))
		args = append(args, *req.HealthStatus)
		argsPosition++
	}

	if req.Image != nil {
		sets = append(sets, fmt.Sprintf("image = $%d", argsPosition))
		args = append(args, *req.Image)
		argsPosition++
	}

	query := `UPDATE plants SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2
		 RETURNING id, name, room_id, health_status, user_id, image, created_at, updated_at`

	var p plant.Plant

	err := r.prom.ObserveDB("plants.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).
			Scan(&p.ID, &p.Name, &p.RoomID, &p.HealthStatus, &p.UserID, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plant.Plant{}, plant.ErrNotFound
		}

		if IsForeignKeyViolation(err) {
			return plant.Plant{}, room.ErrNotFound
		}

		return plant.Plant{}, err
	}

	return p, nil
}

// Delete removes the plant record and reports its image filename so the
// caller can attempt blob cleanup. An empty string means no image.
func (r *PlantsRepo) Delete(ctx context.Context, id, userID string) (string, error) {
	var image string

	err := r.prom.ObserveDB("plants.delete", func() error {
		return r.pool.QueryRow(ctx,
			`DELETE FROM plants WHERE id = $1 AND user_id = $2 RETURNING image`,
			id, userID,
		).Scan(&image)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", plant.ErrNotFound
		}

		return "", err
	}

	return image, nil
}
