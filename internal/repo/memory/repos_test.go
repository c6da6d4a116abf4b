package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/verdantlab/planthub/internal/domain/plant"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/domain/user"
	"github.com/verdantlab/planthub/internal/repo/memory"
)

func newRepos() (*memory.UsersRepo, *memory.RoomsRepo, *memory.PlantsRepo) {
	users := memory.NewUsersRepo()
	plants := memory.NewPlantsRepo()
	rooms := memory.NewRoomsRepo(plants)

	return users, rooms, plants
}

func mustCreateRoom(t *testing.T, rooms *memory.RoomsRepo, name, userID string) room.Room {
	t.Helper()

	rm, err := rooms.Create(context.Background(), room.NewFromCreateRequest(room.CreateRoomRequest{Name: name}, userID))

	if err != nil {
		t.Fatalf("create room %q: %v", name, err)
	}

	return rm
}

func mustCreatePlant(t *testing.T, plants *memory.PlantsRepo, name, roomID, userID, image string) plant.Plant {
	t.Helper()

	p, err := plants.Create(context.Background(), plant.NewFromCreateRequest(plant.CreatePlantRequest{
		Name:         name,
		RoomID:       roomID,
		HealthStatus: "Healthy",
		Image:        image,
	}, userID))

	if err != nil {
		t.Fatalf("create plant %q: %v", name, err)
	}

	return p
}

func TestUsersDuplicateEmail(t *testing.T) {
	users, _, _ := newRepos()
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "Alice@Example.com", "hash1")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// same address, different case
	_, err = users.Create(ctx, "alice2", "alice@example.COM", "hash2")

	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}
}

func TestUsersEmailLookupIsCaseInsensitive(t *testing.T) {
	users, _, _ := newRepos()
	ctx := context.Background()

	created, err := users.Create(ctx, "alice", "Alice@Example.com", "hash")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := users.GetByEmail(ctx, "ALICE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if found.ID != created.ID {
		t.Fatalf("got user %s, want %s", found.ID, created.ID)
	}
}

func TestRoomNameUniquePerOwner(t *testing.T) {
	_, rooms, _ := newRepos()
	ctx := context.Background()

	mustCreateRoom(t, rooms, "Greenhouse", "u1")

	_, err := rooms.Create(ctx, room.NewFromCreateRequest(room.CreateRoomRequest{Name: "Greenhouse"}, "u1"))

	if !errors.Is(err, room.ErrNameTaken) {
		t.Fatalf("got %v, want ErrNameTaken", err)
	}

	// a different owner may reuse the name
	if _, err := rooms.Create(ctx, room.NewFromCreateRequest(room.CreateRoomRequest{Name: "Greenhouse"}, "u2")); err != nil {
		t.Fatalf("other owner should be able to reuse the name: %v", err)
	}
}

func TestRoomDeleteCascadesToItsPlantsOnly(t *testing.T) {
	_, rooms, plants := newRepos()
	ctx := context.Background()

	greenhouse := mustCreateRoom(t, rooms, "Greenhouse", "u1")
	kitchen := mustCreateRoom(t, rooms, "Kitchen", "u1")

	mustCreatePlant(t, plants, "Basil", greenhouse.ID, "u1", "basil.png")
	mustCreatePlant(t, plants, "Fern", greenhouse.ID, "u1", "")
	keeper := mustCreatePlant(t, plants, "Cactus", kitchen.ID, "u1", "")

	images, err := rooms.Delete(ctx, greenhouse.ID, "u1")

	if err != nil {
		t.Fatalf("delete room failed: %v", err)
	}

	if len(images) != 1 || images[0] != "basil.png" {
		t.Fatalf("got cascade images %v, want [basil.png]", images)
	}

	left, err := plants.ListByUser(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("list plants failed: %v", err)
	}

	if len(left) != 1 || left[0].ID != keeper.ID {
		t.Fatalf("cascade touched the wrong plants: %+v", left)
	}
}

func TestRoomDeleteNotFound(t *testing.T) {
	_, rooms, _ := newRepos()

	_, err := rooms.Delete(context.Background(), "missing-id", "u1")

	if !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRoomDeleteScopedToOwner(t *testing.T) {
	_, rooms, _ := newRepos()

	rm := mustCreateRoom(t, rooms, "Greenhouse", "u1")

	_, err := rooms.Delete(context.Background(), rm.ID, "someone-else")

	if !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound for foreign owner", err)
	}
}

func TestPlantDeleteIsNotFoundWhenAbsent(t *testing.T) {
	_, rooms, plants := newRepos()
	ctx := context.Background()

	rm := mustCreateRoom(t, rooms, "Greenhouse", "u1")
	p := mustCreatePlant(t, plants, "Basil", rm.ID, "u1", "basil.png")

	img, err := plants.Delete(ctx, p.ID, "u1")

	if err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	if img != "basil.png" {
		t.Fatalf("got image %q, want basil.png", img)
	}

	// second delete of the same id is NotFound, store unchanged
	_, err = plants.Delete(ctx, p.ID, "u1")

	if !errors.Is(err, plant.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPlantCreateRequiresExistingRoom(t *testing.T) {
	_, _, plants := newRepos()

	// rooms repo wired via newRepos, so an unknown id must be rejected
	_, err := plants.Create(context.Background(), plant.NewFromCreateRequest(plant.CreatePlantRequest{
		Name:         "Basil",
		RoomID:       "no-such-room",
		HealthStatus: "Healthy",
	}, "u1"))

	if !errors.Is(err, room.ErrNotFound) {
		t.Fatalf("got %v, want room.ErrNotFound", err)
	}
}

func TestPlantUpdatePartial(t *testing.T) {
	_, rooms, plants := newRepos()
	ctx := context.Background()

	rm := mustCreateRoom(t, rooms, "Greenhouse", "u1")
	p := mustCreatePlant(t, plants, "Basil", rm.ID, "u1", "")

	status := "Wilting"

	updated, err := plants.Update(ctx, p.ID, "u1", plant.UpdatePlantRequest{HealthStatus: &status})

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.HealthStatus != "Wilting" {
		t.Fatalf("got status %q, want Wilting", updated.HealthStatus)
	}

	if updated.Name != "Basil" || updated.RoomID != rm.ID {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestRoomDeleteCascadeUnderConcurrentCreates(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, rooms, plants := newRepos()

		rm := mustCreateRoom(t, rooms, "Greenhouse", "u1")

		done := make(chan struct{})

		go func() {
			defer close(done)

			for j := 0; j < 20; j++ {
				_, _ = plants.Create(ctx, plant.NewFromCreateRequest(plant.CreatePlantRequest{
					Name:         "Basil",
					RoomID:       rm.ID,
					HealthStatus: "Healthy",
				}, "u1"))
			}
		}()

		if _, err := rooms.Delete(ctx, rm.ID, "u1"); err != nil {
			t.Fatalf("delete room: %v", err)
		}

		<-done

		// creates that raced the delete either landed before the
		// cascade (and were swept) or were rejected; none may remain
		got, err := plants.ListByUser(ctx, "u1", &rm.ID)

		if err != nil {
			t.Fatalf("list plants: %v", err)
		}

		if len(got) != 0 {
			t.Fatalf("round %d: %d plants orphaned by the cascade", i, len(got))
		}
	}
}
