package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/verdantlab/planthub/internal/domain/room"
)

type RoomsRepo struct {
	mu     sync.RWMutex
	items  map[string]room.Room
	plants *PlantsRepo
}

// NewRoomsRepo wires the plants repo in so a room delete can cascade,
// matching the transactional postgres behaviour.
func NewRoomsRepo(plants *PlantsRepo) *RoomsRepo {
	r := &RoomsRepo{
		items:  make(map[string]room.Room),
		plants: plants,
	}

	if plants != nil {
		plants.LinkRooms(r.exists)
	}

	return r
}

func (r *RoomsRepo) exists(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[roomID]
	return ok
}

func (r *RoomsRepo) Create(ctx context.Context, rm room.Room) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.UserID == rm.UserID && existing.Name == rm.Name {
			return room.Room{}, room.ErrNameTaken
		}
	}

	r.items[rm.ID] = rm

	return rm, nil
}

func (r *RoomsRepo) ListByUser(ctx context.Context, userID string) ([]room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]room.Room, 0)

	for _, rm := range r.items {
		if rm.UserID == userID {
			out = append(out, rm)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *RoomsRepo) GetByID(ctx context.Context, id, userID string) (room.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.items[id]

	if !ok || rm.UserID != userID {
		return room.Room{}, room.ErrNotFound
	}

	return rm, nil
}

func (r *RoomsRepo) Update(ctx context.Context, id, userID string, req room.UpdateRoomRequest) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.items[id]

	if !ok || rm.UserID != userID {
		return room.Room{}, room.ErrNotFound
	}

	if req.Name != nil && *req.Name != rm.Name {
		for _, existing := range r.items {
			if existing.ID != id && existing.UserID == userID && existing.Name == *req.Name {
				return room.Room{}, room.ErrNameTaken
			}
		}
		rm.Name = *req.Name
	}

	if req.Image != nil {
		rm.Image = *req.Image
	}

	if req.Floor != nil {
		rm.Floor = *req.Floor
	}

	rm.UpdatedAt = time.Now().UTC()

	r.items[id] = rm

	return rm, nil
}

func (r *RoomsRepo) Delete(ctx context.Context, id, userID string) ([]string, error) {
	r.mu.Lock()

	rm, ok := r.items[id]

	if !ok || rm.UserID != userID {
		r.mu.Unlock()
		return nil, room.ErrNotFound
	}

	delete(r.items, id)
	r.mu.Unlock()

	if r.plants == nil {
		return nil, nil
	}

	// the room is gone before the cascade starts, and plant inserts
	// re-check room existence under their own lock, so a create racing
	// this delete cannot leave an orphan
	return r.plants.deleteByRoom(id), nil
}
