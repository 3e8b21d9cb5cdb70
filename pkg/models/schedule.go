package models

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	PlaceName string    `json:"place_name" db:"place_name"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Category  Category  `json:"category" db:"category"`
	VisitDate time.Time `json:"visit_date" db:"visit_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ScheduleCreateRequest struct {
	PlaceName string    `json:"place_name" validate:"required,max=255"`
	Address   *string   `json:"address,omitempty"`
	Category  Category  `json:"category" validate:"required,oneof=ACTIVITY DINING CAFE"`
	VisitDate time.Time `json:"visit_date" validate:"required"`
}
