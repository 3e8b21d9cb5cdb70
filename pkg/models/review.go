package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	PlaceName string    `json:"place_name" db:"place_name"`
	Rating    int       `json:"rating" db:"rating"`
	Content   *string   `json:"content,omitempty" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ReviewCreateRequest struct {
	PlaceName string  `json:"place_name" validate:"required,max=255"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Content   *string `json:"content,omitempty" validate:"omitempty,max=500"`
}

// PointsSummary is the user's points balance after an award.
type PointsSummary struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
	Level  int       `json:"level"`
}
