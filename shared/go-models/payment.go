package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "virement"
	PaymentMethodCheque   PaymentMethod = "cheque"
	PaymentMethodCash     PaymentMethod = "especes"
	PaymentMethodCard     PaymentMethod = "cb"
)

const PaymentStatusPaid = "paid"

type Payment struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	LeaseID       uuid.UUID     `json:"lease_id"`
	Amount        float64       `json:"amount"`
	PaymentDate   time.Time     `json:"payment_date"`
	PeriodMonth   int           `json:"period_month"`
	PeriodYear    int           `json:"period_year"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Notes         *string       `json:"notes,omitempty"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PeriodKey formats the payment period as "YYYY-MM".
func (p *Payment) PeriodKey() string {
	return PeriodKey(p.PeriodYear, p.PeriodMonth)
}
