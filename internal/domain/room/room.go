package room

import (
	"errors"
	"time"
)

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"nameRoom"`
	UserID    string    `json:"idUser"`
	Image     string    `json:"imageRoom,omitempty"`
	Floor     int       `json:"floor"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound = errors.New("room not found")
	// Room names are unique per owner so a delete can never
	// take out plants belonging to an unrelated room.
	ErrNameTaken = errors.New("room name already used")
)

type CreateRoomRequest struct {
	Name  string `json:"nameRoom" binding:"required,min=1,max=80"`
	Image string `json:"imageRoom" binding:"omitempty,max=255"`
	Floor int    `json:"floor" binding:"omitempty,min=0,max=200"`
}

// with pointers if a field is absent from the payload, it stays nil and
// the stored value is kept.
type UpdateRoomRequest struct {
	Name  *string `json:"nameRoom" binding:"omitempty,min=1,max=80"`
	Image *string `json:"imageRoom" binding:"omitempty,max=255"`
	Floor *int    `json:"floor" binding:"omitempty,min=0,max=200"`
}
