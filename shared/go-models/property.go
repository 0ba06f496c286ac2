package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a rentable unit. IsOccupied and CurrentTenantID are only
// written by the lease lifecycle.
type Property struct {
	Versioned
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	PostalCode      string     `json:"postal_code"`
	PropertyType    string     `json:"property_type"`
	Surface         float64    `json:"surface"`
	Rooms           int        `json:"rooms"`
	RentAmount      float64    `json:"rent_amount"`
	Charges         float64    `json:"charges"`
	Description     *string    `json:"description,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty"`
	IsOccupied      bool       `json:"is_occupied"`
	CurrentTenantID *uuid.UUID `json:"current_tenant_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (p *Property) GetID() uuid.UUID { return p.ID }
