package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verdantlab/planthub/internal/domain/plant"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/http/handlers"
)

const testRoomID = "7f9b2c4e-1a3d-4f5b-8c6d-2e7a9b1c3d5f"

type fakePlantsRepo struct {
	createFn func(ctx context.Context, p plant.Plant) (plant.Plant, error)
	listFn   func(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error)
	updateFn func(ctx context.Context, id, userID string, req plant.UpdatePlantRequest) (plant.Plant, error)
	deleteFn func(ctx context.Context, id, userID string) (string, error)
}

func (f *fakePlantsRepo) Create(ctx context.Context, p plant.Plant) (plant.Plant, error) {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return p, nil
}

func (f *fakePlantsRepo) ListByUser(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, roomID)
	}
	return []plant.Plant{}, nil
}

func (f *fakePlantsRepo) Update(ctx context.Context, id, userID string, req plant.UpdatePlantRequest) (plant.Plant, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, userID, req)
	}
	return plant.Plant{}, plant.ErrNotFound
}

func (f *fakePlantsRepo) Delete(ctx context.Context, id, userID string) (string, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, userID)
	}
	return "", plant.ErrNotFound
}

func TestCreatePlantHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakePlantsRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"namePlant":"Basil","roomId":"` + testRoomID + `","healthStatus":"healthy"}`,
			repoSetUp: func(f *fakePlantsRepo) {
				f.createFn = func(ctx context.Context, p plant.Plant) (plant.Plant, error) {
					if p.UserID != "u1" {
						t.Fatalf("plant owner should come from the token, got %q", p.UserID)
					}
					if p.RoomID != testRoomID {
						t.Fatalf("unexpected room id %q", p.RoomID)
					}
					return p, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_health_status",
			body:           `{"namePlant":"Basil","roomId":"` + testRoomID + `"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "room_id_not_uuid",
			body:           `{"namePlant":"Basil","roomId":"not-a-uuid","healthStatus":"healthy"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown_room",
			body: `{"namePlant":"Basil","roomId":"` + testRoomID + `","healthStatus":"healthy"}`,
			repoSetUp: func(f *fakePlantsRepo) {
				f.createFn = func(ctx context.Context, p plant.Plant) (plant.Plant, error) {
					return plant.Plant{}, room.ErrNotFound
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePlantsRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewPlantsHandler(repo, &fakeRemover{}, testLogger())

			r := setupAuthedRouter(http.MethodPost, "/user/createPlant", "u1", h.CreatePlant)

			w := doJSON(t, r, http.MethodPost, "/user/createPlant", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListPlantsHandlerForwardsRoomFilter(t *testing.T) {
	var gotRoomID *string

	repo := &fakePlantsRepo{
		listFn: func(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error) {
			gotRoomID = roomID
			return []plant.Plant{}, nil
		},
	}

	h := handlers.NewPlantsHandler(repo, &fakeRemover{}, testLogger())

	r := setupAuthedRouter(http.MethodGet, "/user/getPlant", "u1", h.ListPlants)

	req := httptest.NewRequest(http.MethodGet, "/user/getPlant?roomId="+testRoomID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	if gotRoomID == nil || *gotRoomID != testRoomID {
		t.Fatalf("expected room filter %q to be forwarded, got %v", testRoomID, gotRoomID)
	}
}

func TestUpdatePlantHandlerNotFound(t *testing.T) {
	h := handlers.NewPlantsHandler(&fakePlantsRepo{}, &fakeRemover{}, testLogger())

	r := setupAuthedRouter(http.MethodPut, "/user/updatePlant/:id", "u1", h.UpdatePlant)

	w := doJSON(t, r, http.MethodPut, "/user/updatePlant/missing", `{"healthStatus":"wilting"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}
}

func TestDeletePlantHandlerCleansUpImage(t *testing.T) {
	repo := &fakePlantsRepo{
		deleteFn: func(ctx context.Context, id, userID string) (string, error) {
			return "basil.png", nil
		},
	}

	remover := &fakeRemover{}

	h := handlers.NewPlantsHandler(repo, remover, testLogger())

	r := setupAuthedRouter(http.MethodDelete, "/user/deletePlant/:id", "u1", h.DeletePlant)

	req := httptest.NewRequest(http.MethodDelete, "/user/deletePlant/p1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	if len(remover.deleted) != 1 || remover.deleted[0] != "basil.png" {
		t.Fatalf("expected basil.png to be removed, got %v", remover.deleted)
	}
}

func TestDeletePlantHandlerNotFound(t *testing.T) {
	h := handlers.NewPlantsHandler(&fakePlantsRepo{}, &fakeRemover{}, testLogger())

	r := setupAuthedRouter(http.MethodDelete, "/user/deletePlant/:id", "u1", h.DeletePlant)

	req := httptest.NewRequest(http.MethodDelete, "/user/deletePlant/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestDeletePlantHandlerPlantWithoutImage(t *testing.T) {
	repo := &fakePlantsRepo{
		deleteFn: func(ctx context.Context, id, userID string) (string, error) {
			return "", nil
		},
	}

	remover := &fakeRemover{err: errors.New("should not be called")}

	h := handlers.NewPlantsHandler(repo, remover, testLogger())

	r := setupAuthedRouter(http.MethodDelete, "/user/deletePlant/:id", "u1", h.DeletePlant)

	req := httptest.NewRequest(http.MethodDelete, "/user/deletePlant/p1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	if len(remover.deleted) != 0 {
		t.Fatalf("no image should be removed for an image-less plant, got %v", remover.deleted)
	}
}
