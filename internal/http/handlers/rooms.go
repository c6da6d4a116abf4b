package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/http/middlewares"
	"github.com/verdantlab/planthub/internal/storage"
)

type RoomsStore interface {
	Create(ctx context.Context, rm room.Room) (room.Room, error)
	ListByUser(ctx context.Context, userID string) ([]room.Room, error)
	Update(ctx context.Context, id, userID string, req room.UpdateRoomRequest) (room.Room, error)
	Delete(ctx context.Context, id, userID string) ([]string, error)
}

// FileRemover is the only blob-store capability the lifecycle handlers
// need: best-effort cleanup of images left behind by deleted records.
type FileRemover interface {
	Delete(name string) error
}

type RoomsHandler struct {
	repo   RoomsStore
	images FileRemover
	log    *slog.Logger
}

func NewRoomsHandler(repo RoomsStore, images FileRemover, log *slog.Logger) *RoomsHandler {
	return &RoomsHandler{repo: repo, images: images, log: log}
}

func (h *RoomsHandler) CreateRoom(ctx *gin.Context) {
	var req room.CreateRoomRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rm, err := h.repo.Create(cctx, room.NewFromCreateRequest(req, userID))

	if err != nil {
		if errors.Is(err, room.ErrNameTaken) {
			RespondBadRequest(ctx, "name_taken", "A room with this name already exists.", nil)
			return
		}

		RespondInternal(ctx, "Could not create room")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    rm,
	})
}

func (h *RoomsHandler) ListRooms(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rooms, err := h.repo.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list rooms")
		return
	}

	ctx.JSON(http.StatusOK, rooms)
}

func (h *RoomsHandler) UpdateRoom(ctx *gin.Context) {
	id := ctx.Param("id")

	var req room.UpdateRoomRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	rm, err := h.repo.Update(cctx, id, userID, req)

	if err != nil {
		switch {
		case errors.Is(err, room.ErrNotFound):
			RespondNotFound(ctx, "Room not found")
		case errors.Is(err, room.ErrNameTaken):
			RespondBadRequest(ctx, "name_taken", "A room with this name already exists.", nil)
		default:
			RespondInternal(ctx, "Could not update room")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Room updated successfully",
		"room":    rm,
	})
}

func (h *RoomsHandler) DeleteRoom(ctx *gin.Context) {
	id := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	images, err := h.repo.Delete(cctx, id, userID)

	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			RespondNotFound(ctx, "Room not found")
			return
		}

		RespondInternal(ctx, "Could not delete room")
		return
	}

	// record deletion is the source of truth; image cleanup is
	// best-effort and failures only reach the operator log
	for _, img := range images {
		removeImage(ctx.Request.Context(), h.images, h.log, img)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Room and associated plants deleted successfully",
	})
}

func removeImage(ctx context.Context, images FileRemover, log *slog.Logger, name string) {
	if images == nil || name == "" {
		return
	}

	err := images.Delete(name)

	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		if log != nil {
			log.WarnContext(ctx, "failed to delete image file", "file", name, "err", err)
		}
	}
}
