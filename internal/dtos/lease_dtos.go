package dtos

import (
	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type CreateLeaseRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	TenantID   uuid.UUID `json:"tenant_id" validate:"required"`
	StartDate  string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	RentAmount float64   `json:"rent_amount" validate:"gte=0"`
	Charges    float64   `json:"charges" validate:"gte=0"`
	Deposit    float64   `json:"deposit" validate:"gte=0"`
	PaymentDay int       `json:"payment_day" validate:"omitempty,min=1,max=31"` // 0 defaults to 1
	Notes      *string   `json:"notes"`
}

// LeaseView is a lease with its property and tenant summaries. Either is
// nil when the referenced record was deleted.
type LeaseView struct {
	*models.Lease
	Property *PropertySummary `json:"property"`
	Tenant   *TenantSummary   `json:"tenant"`
}

type CreateVacancyRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
	StartDate  string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Reason     *string   `json:"reason"`
}

type VacancyView struct {
	*models.Vacancy
	Property *PropertySummary `json:"property"`
}
