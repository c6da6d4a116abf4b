package plant

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreatePlantRequest, userID string) Plant {
	now := time.Now().UTC()

	return Plant{
		ID:           uuid.NewString(),
		Name:         req.Name,
		RoomID:       req.RoomID,
		HealthStatus: req.HealthStatus,
		UserID:       userID,
		Image:        req.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
