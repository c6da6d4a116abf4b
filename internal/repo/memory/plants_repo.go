package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/verdantlab/planthub/internal/domain/plant"
	"github.com/verdantlab/planthub/internal/domain/room"
)

type PlantsRepo struct {
	mu    sync.RWMutex
	items map[string]plant.Plant

	// roomExists lets the repo honour the room reference the way the
	// schema FK does; nil disables the check.
	roomExists func(roomID string) bool
}

func NewPlantsRepo() *PlantsRepo {
	return &PlantsRepo{
		items: make(map[string]plant.Plant),
	}
}

// LinkRooms installs the room-existence check, normally backed by a
// RoomsRepo in the same process.
func (r *PlantsRepo) LinkRooms(exists func(roomID string) bool) {
	r.roomExists = exists
}

func (r *PlantsRepo) Create(ctx context.Context, p plant.Plant) (plant.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// checked under the lock so a concurrent room-delete cascade
	// either sweeps this plant or the insert sees the room gone
	if r.roomExists != nil && !r.roomExists(p.RoomID) {
		return plant.Plant{}, room.ErrNotFound
	}

	r.items[p.ID] = p

	return p, nil
}

func (r *PlantsRepo) ListByUser(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plant.Plant, 0)

	for _, p := range r.items {
		if p.UserID != userID {
			continue
		}

		if roomID != nil && p.RoomID != *roomID {
			continue
		}

		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *PlantsRepo) GetByID(ctx context.Context, id, userID string) (plant.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]

	if !ok || p.UserID != userID {
		return plant.Plant{}, plant.ErrNotFound
	}

	return p, nil
}

func (r *PlantsRepo) Update(ctx context.Context, id, userID string, req plant.UpdatePlantRequest) (plant.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.RoomID != nil && r.roomExists != nil && !r.roomExists(*req.RoomID) {
		return plant.Plant{}, room.ErrNotFound
	}

	p, ok := r.items[id]

	if !ok || p.UserID != userID {
		return plant.Plant{}, plant.ErrNotFound
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.RoomID != nil {
		p.RoomID = *req.RoomID
	}

	if req.HealthStatus != nil {
		p.HealthStatus = *req.HealthStatus
	}

	if req.Image != nil {
		p.Image = *req.Image
	}

	p.UpdatedAt = time.Now().UTC()

	r.items[id] = p

	return p, nil
}

func (r *PlantsRepo) Delete(ctx context.Context, id, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]

	if !ok || p.UserID != userID {
		return "", plant.ErrNotFound
	}

	delete(r.items, id)

	return p.Image, nil
}

// deleteByRoom backs the room cascade. Deleting an already-deleted
// plant is a no-op, so the cascade is idempotent.
func (r *PlantsRepo) deleteByRoom(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var images []string

	for id, p := range r.items {
		if p.RoomID != roomID {
			continue
		}

		delete(r.items, id)

		if p.Image != "" {
			images = append(images, p.Image)
		}
	}

	return images
}
