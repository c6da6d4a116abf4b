package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/config"
	"github.com/verdantlab/planthub/internal/domain/plant"
	"github.com/verdantlab/planthub/internal/domain/room"
	"github.com/verdantlab/planthub/internal/http/middlewares"
)

type PlantsStore interface {
	Create(ctx context.Context, p plant.Plant) (plant.Plant, error)
	ListByUser(ctx context.Context, userID string, roomID *string) ([]plant.Plant, error)
	Update(ctx context.Context, id, userID string, req plant.UpdatePlantRequest) (plant.Plant, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

type PlantsHandler struct {
	repo   PlantsStore
	images FileRemover
	log    *slog.Logger
}

func NewPlantsHandler(repo PlantsStore, images FileRemover, log *slog.Logger) *PlantsHandler {
	return &PlantsHandler{repo: repo, images: images, log: log}
}

func (h *PlantsHandler) CreatePlant(ctx *gin.Context) {
	var req plant.CreatePlantRequest

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

	p, err := h.repo.Create(cctx, plant.NewFromCreateRequest(req, userID))

	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			RespondBadRequest(ctx, "unknown_room", "The referenced room does not exist.", nil)
			return
		}

		RespondInternal(ctx, "Could not create plant")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Plant created successfully",
		"plant":   p,
	})
}

func (h *PlantsHandler) ListPlants(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	var roomID *string

	if v := ctx.Query("roomId"); v != "" {
		roomID = &v
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	plants, err := h.repo.ListByUser(cctx, userID, roomID)

	if err != nil {
		RespondInternal(ctx, "Could not list plants")
		return
	}

	ctx.JSON(http.StatusOK, plants)
}

func (h *PlantsHandler) UpdatePlant(ctx *gin.Context) {
	id := ctx.Param("id")

	var req plant.UpdatePlantRequest

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

	p, err := h.repo.Update(cctx, id, userID, req)

	if err != nil {
		switch {
		case errors.Is(err, plant.ErrNotFound):
			RespondNotFound(ctx, "Plant not found")
		case errors.Is(err, room.ErrNotFound):
			RespondBadRequest(ctx, "unknown_room", "The referenced room does not exist.", nil)
		default:
			RespondInternal(ctx, "Could not update plant")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Plant updated successfully",
		"plant":   p,
	})
}

func (h *PlantsHandler) DeletePlant(ctx *gin.Context) {
	id := ctx.Param("id")

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnauthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	image, err := h.repo.Delete(cctx, id, userID)

	if err != nil {
		if errors.Is(err, plant.ErrNotFound) {
			RespondNotFound(ctx, "Plant not found")
			return
		}

		RespondInternal(ctx, "Could not delete plant")
		return
	}

	removeImage(ctx.Request.Context(), h.images, h.log, image)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Plant deleted successfully",
	})
}
