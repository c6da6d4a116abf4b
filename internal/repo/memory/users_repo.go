package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/verdantlab/planthub/internal/domain/user"
)

// UsersRepo mirrors the postgres repo semantics in memory, including
// the lowercase email policy and the uniqueness guarantee.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UsersRepo) Create(ctx context.Context, username, email, passwordHash string) (user.User, error) {
	email = normalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	email = normalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}
