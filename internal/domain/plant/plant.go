package plant

import (
	"errors"
	"time"
)

// A plant references its room by id rather than by room name, so the
// room-delete cascade cannot collide with same-named rooms.
type Plant struct {
	ID           string    `json:"id"`
	Name         string    `json:"namePlant"`
	RoomID       string    `json:"roomId"`
	HealthStatus string    `json:"healthStatus"`
	UserID       string    `json:"userID"`
	Image        string    `json:"imagePlant,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("plant not found")

type CreatePlantRequest struct {
	Name         string `json:"namePlant" binding:"required,min=1,max=80"`
	RoomID       string `json:"roomId" binding:"required,uuid4"`
	HealthStatus string `json:"healthStatus" binding:"required,max=120"`
	Image        string `json:"imagePlant" binding:"omitempty,max=255"`
}

type UpdatePlantRequest struct {
	Name         *string `json:"namePlant" binding:"omitempty,min=1,max=80"`
	RoomID       *string `json:"roomId" binding:"omitempty,uuid4"`
	HealthStatus *string `json:"healthStatus" binding:"omitempty,max=120"`
	Image        *string `json:"imagePlant" binding:"omitempty,max=255"`
}
