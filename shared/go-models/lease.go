package models

import (
	"time"

	"github.com/google/uuid"
)

// Lease binds a tenant to a property. Created active; termination is the
// only transition and fixes EndDate.
type Lease struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	PropertyID uuid.UUID  `json:"property_id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	RentAmount float64    `json:"rent_amount"`
	Charges    float64    `json:"charges"`
	Deposit    float64    `json:"deposit"`
	PaymentDay int        `json:"payment_day"`
	Notes      *string    `json:"notes,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MonthlyDue is the rent plus charges owed each period.
func (l *Lease) MonthlyDue() float64 {
	return l.RentAmount + l.Charges
}
