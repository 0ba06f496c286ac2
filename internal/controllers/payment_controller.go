package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(s *services.PaymentService) *PaymentController {
	return &PaymentController{payments: s}
}

// POST /api/payments
func (c *PaymentController) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.CreatePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := c.payments.CreatePayment(r.Context(), owner, req)
	if err != nil {
		respondServiceError(w, err, "Failed to record payment")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GET /api/payments
func (c *PaymentController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.payments.ListPayments(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/payments/lease/{lease_id}
func (c *PaymentController) ListLeasePaymentsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "lease_id")
	if !ok {
		return
	}
	list, err := c.payments.ListLeasePayments(r.Context(), owner, leaseID)
	if err != nil {
		respondServiceError(w, err, "Failed to list lease payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// DELETE /api/payments/{id}
func (c *PaymentController) DeletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.payments.DeletePayment(r.Context(), owner, id); err != nil {
		respondServiceError(w, err, "Failed to delete payment")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Paiement supprimé"})
}

// GET /api/receipts/{payment_id}
func (c *PaymentController) ReceiptHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "payment_id")
	if !ok {
		return
	}
	receipt, err := c.payments.Receipt(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to build receipt")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ReceiptResponse{Receipt: *receipt})
}

// GET /api/reminders/pending
func (c *PaymentController) PendingPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	resp, err := c.payments.PendingPayments(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list pending payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/export/payments?year=
func (c *PaymentController) ExportPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	year, ok := queryOptionalInt(w, r, "year")
	if !ok {
		return
	}
	resp, err := c.payments.ExportPayments(r.Context(), owner, year)
	if err != nil {
		respondServiceError(w, err, "Failed to export payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/export/payments/csv?year=
func (c *PaymentController) ExportPaymentsCSVHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	year, ok := queryOptionalInt(w, r, "year")
	if !ok {
		return
	}
	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := c.payments.ExportPaymentsCSV(r.Context(), owner, year, &buf); err != nil {
		respondServiceError(w, err, "Failed to export payments")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.payments.ExportFilename(year)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
