package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	Versioned
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	BirthDate         *time.Time `json:"birth_date,omitempty"`
	Profession        *string    `json:"profession,omitempty"`
	EmergencyContact  *string    `json:"emergency_contact,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	CurrentPropertyID *uuid.UUID `json:"current_property_id"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (t *Tenant) GetID() uuid.UUID { return t.ID }

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
