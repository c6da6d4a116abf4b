package room

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateRoomRequest, userID string) Room {
	now := time.Now().UTC()

	return Room{
		ID:        uuid.NewString(),
		Name:      req.Name,
		UserID:    userID,
		Image:     req.Image,
		Floor:     req.Floor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
