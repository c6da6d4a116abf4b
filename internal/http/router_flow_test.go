package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantlab/planthub/internal/auth"
	"github.com/verdantlab/planthub/internal/config"
	apihttp "github.com/verdantlab/planthub/internal/http"
	"github.com/verdantlab/planthub/internal/http/middlewares"
	"github.com/verdantlab/planthub/internal/repo/memory"
	"github.com/verdantlab/planthub/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	imageDir string
}

// full route table over the in-memory repos, no postgres or redis
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	imageDir := t.TempDir()

	images, err := storage.New(imageDir, 1_000_000, []string{"png", "jpg", "jpeg"})

	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	models, err := storage.New(t.TempDir(), 100_000_000, []string{"pt", "ptl", "pth"})

	if err != nil {
		t.Fatalf("model store: %v", err)
	}

	plants := memory.NewPlantsRepo()
	rooms := memory.NewRoomsRepo(plants)

	r := apihttp.NewRouterWith(apihttp.Deps{
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cfg: config.Config{
			Env:           "dev",
			ModelMaxBytes: 100_000_000,
		},
		Users:   memory.NewUsersRepo(),
		Rooms:   rooms,
		Plants:  plants,
		Images:  images,
		Models:  models,
		JWT:     auth.NewManager("test-secret", 48*time.Hour),
		Limiter: middlewares.NewMemoryLimiter(1000, time.Minute),
		Ping:    func() error { return nil },
	})

	return &testEnv{router: r, imageDir: imageDir}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader

	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestRoomLifecycleFlow(t *testing.T) {
	env := newTestEnv(t)

	// sign up and keep the issued token
	w := env.do(t, http.MethodPost, "/user/signup", "",
		`{"username":"u1","email":"u1@example.com","password":"secret1"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup: got status %d, body=%s", w.Code, w.Body.String())
	}

	// logging in with the same credentials must also work
	w = env.do(t, http.MethodPost, "/user/login", "",
		`{"email":"u1@example.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body=%s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	decode(t, w, &loginResp)

	if loginResp.Token == "" {
		t.Fatal("login should return a token")
	}

	token := loginResp.Token

	// create a room
	w = env.do(t, http.MethodPost, "/user/createRoom", token,
		`{"nameRoom":"R1","floor":1}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("createRoom: got status %d, body=%s", w.Code, w.Body.String())
	}

	var createRoomResp struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	decode(t, w, &createRoomResp)

	roomID := createRoomResp.Room.ID

	if roomID == "" {
		t.Fatal("createRoom should return the room id")
	}

	// seed an image file and attach it to the plant
	img, err := os.Create(filepath.Join(env.imageDir, "p1.png"))

	if err != nil {
		t.Fatalf("seed image: %v", err)
	}
	img.Close()

	w = env.do(t, http.MethodPost, "/user/createPlant", token,
		`{"namePlant":"P1","roomId":"`+roomID+`","healthStatus":"healthy","imagePlant":"p1.png"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("createPlant: got status %d, body=%s", w.Code, w.Body.String())
	}

	// the plant shows up in the listing
	w = env.do(t, http.MethodGet, "/user/getPlant", token, "")

	if w.Code != http.StatusOK {
		t.Fatalf("getPlant: got status %d, body=%s", w.Code, w.Body.String())
	}

	var plants []struct {
		Name string `json:"namePlant"`
	}
	decode(t, w, &plants)

	if len(plants) != 1 || plants[0].Name != "P1" {
		t.Fatalf("expected [P1], got %s", w.Body.String())
	}

	// deleting the room cascades to its plants
	w = env.do(t, http.MethodDelete, "/user/deleteRoom/"+roomID, token, "")

	if w.Code != http.StatusOK {
		t.Fatalf("deleteRoom: got status %d, body=%s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/user/getPlant", token, "")

	if w.Code != http.StatusOK {
		t.Fatalf("getPlant after delete: got status %d, body=%s", w.Code, w.Body.String())
	}

	plants = nil
	decode(t, w, &plants)

	if len(plants) != 0 {
		t.Fatalf("plants should be gone with the room, got %s", w.Body.String())
	}

	// the cascade also cleaned up the plant's image file
	if _, err := os.Stat(filepath.Join(env.imageDir, "p1.png")); !os.IsNotExist(err) {
		t.Fatalf("plant image should be deleted with the room, stat err=%v", err)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/user/me"},
		{http.MethodPost, "/user/createRoom"},
		{http.MethodGet, "/user/getRoom"},
		{http.MethodPost, "/user/createPlant"},
		{http.MethodGet, "/user/getPlant"},
	}

	for _, p := range paths {
		w := env.do(t, p.method, p.path, "", "")

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: got status %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)

	signup := func(n string) string {
		w := env.do(t, http.MethodPost, "/user/signup", "",
			`{"username":"`+n+`","email":"`+n+`@example.com","password":"secret1"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("signup %s: got status %d, body=%s", n, w.Code, w.Body.String())
		}

		var resp struct {
			Token string `json:"token"`
		}
		decode(t, w, &resp)

		return resp.Token
	}

	alice := signup("alice")
	bob := signup("bob")

	w := env.do(t, http.MethodPost, "/user/createRoom", alice, `{"nameRoom":"Office"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("createRoom: got status %d, body=%s", w.Code, w.Body.String())
	}

	var createResp struct {
		Room struct {
			ID string `json:"id"`
		} `json:"room"`
	}
	decode(t, w, &createResp)

	// bob cannot see or delete alice's room
	w = env.do(t, http.MethodGet, "/user/getRoom", bob, "")

	if w.Code != http.StatusOK || w.Body.String() == "" {
		t.Fatalf("getRoom as bob: got status %d", w.Code)
	}

	var bobRooms []struct {
		ID string `json:"id"`
	}
	decode(t, w, &bobRooms)

	if len(bobRooms) != 0 {
		t.Fatalf("bob should see no rooms, got %s", w.Body.String())
	}

	w = env.do(t, http.MethodDelete, "/user/deleteRoom/"+createResp.Room.ID, bob, "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("deleteRoom as bob: got status %d, want 404", w.Code)
	}

	// same room name is fine for a different owner
	w = env.do(t, http.MethodPost, "/user/createRoom", bob, `{"nameRoom":"Office"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("createRoom as bob: got status %d, body=%s", w.Code, w.Body.String())
	}
}

func TestDatasetsLinkIsPublic(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/datasets/link", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("datasets: got status %d, body=%s", w.Code, w.Body.String())
	}

	var datasets []struct {
		Name string `json:"name"`
		Link string `json:"link"`
	}
	decode(t, w, &datasets)

	if len(datasets) == 0 {
		t.Fatal("dataset catalog should not be empty")
	}

	if datasets[0].Link == "" {
		t.Fatal("datasets should carry download links")
	}

	etag := w.Header().Get("ETag")

	if etag == "" {
		t.Fatal("catalog response should carry an ETag")
	}

	// revalidation with the same ETag short-circuits to 304
	req := httptest.NewRequest(http.MethodGet, "/datasets/link", nil)
	req.Header.Set("If-None-Match", etag)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Fatalf("revalidation: got status %d, want 304", rec.Code)
	}
}
