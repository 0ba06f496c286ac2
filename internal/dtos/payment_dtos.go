package dtos

import (
	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type CreatePaymentRequest struct {
	LeaseID       uuid.UUID `json:"lease_id" validate:"required"`
	Amount        float64   `json:"amount" validate:"gte=0"`
	PaymentDate   string    `json:"payment_date" validate:"required,datetime=2006-01-02"`
	PeriodMonth   int       `json:"period_month" validate:"required,min=1,max=12"`
	PeriodYear    int       `json:"period_year" validate:"required,min=1900,max=9999"`
	PaymentMethod string    `json:"payment_method" validate:"omitempty,oneof=virement cheque especes cb"`
	Notes         *string   `json:"notes"`
}

type PaymentView struct {
	*models.Payment
	PropertyName string `json:"property_name"`
	TenantName   string `json:"tenant_name"`
}

type PendingPayment struct {
	LeaseID     uuid.UUID        `json:"lease_id"`
	Tenant      *TenantSummary   `json:"tenant"`
	Property    *PropertySummary `json:"property"`
	AmountDue   float64          `json:"amount_due"`
	PeriodMonth int              `json:"period_month"`
	PeriodYear  int              `json:"period_year"`
}

type PendingPaymentsResponse struct {
	Pending []PendingPayment `json:"pending"`
	Count   int              `json:"count"`
}

// Receipt is the rent receipt ("quittance de loyer") of one payment.
type Receipt struct {
	PaymentID       uuid.UUID `json:"id"`
	LandlordName    string    `json:"landlord_name"`
	TenantName      string    `json:"tenant_name"`
	PropertyName    string    `json:"property_name"`
	PropertyAddress string    `json:"property_address"`
	Period          string    `json:"period"`
	PeriodMonth     int       `json:"period_month"`
	PeriodYear      int       `json:"period_year"`
	RentAmount      float64   `json:"rent_amount"`
	Charges         float64   `json:"charges"`
	Amount          float64   `json:"total_amount"`
	PaymentDate     string    `json:"payment_date"`
	PaymentMethod   string    `json:"payment_method"`
}

type ReceiptResponse struct {
	Receipt Receipt `json:"receipt"`
}

type ExportRow struct {
	Date      string  `json:"date"`
	Bien      string  `json:"bien"`
	Locataire string  `json:"locataire"`
	Periode   string  `json:"periode"`
	Montant   float64 `json:"montant"`
	Methode   string  `json:"methode"`
}

type ExportResponse struct {
	Year     *int        `json:"year,omitempty"`
	Payments []ExportRow `json:"payments"`
	Total    float64     `json:"total"`
	Count    int         `json:"count"`
}
