package models

import (
	"time"

	"github.com/google/uuid"
)

const VacancyReasonLeaseEnded = "Fin de bail"

type Vacancy struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Reason     *string    `json:"reason,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}
