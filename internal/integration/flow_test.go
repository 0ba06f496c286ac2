//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

func TestLeaseLifecycleFlow(t *testing.T) {
	token, _ := registerOwner(t)

	resp := doRequest(t, http.MethodPost, "/api/properties", token, dtos.PropertyRequest{
		Name:         "T3 Gare",
		Address:      "8 place de la Gare",
		City:         "Nantes",
		PostalCode:   "44000",
		PropertyType: "appartement",
		RentAmount:   800,
		Charges:      60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prop := decodeBody[models.Property](t, resp)

	resp = doRequest(t, http.MethodPost, "/api/tenants", token, dtos.TenantRequest{
		FirstName: "Léa",
		LastName:  "Durand",
		Email:     "lea.durand@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tenant := decodeBody[models.Tenant](t, resp)

	resp = doRequest(t, http.MethodPost, "/api/leases", token, dtos.CreateLeaseRequest{
		PropertyID: prop.ID,
		TenantID:   tenant.ID,
		StartDate:  "2024-09-01",
		RentAmount: 800,
		Charges:    60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lease := decodeBody[models.Lease](t, resp)
	assert.Equal(t, 1, lease.PaymentDay)

	resp = doRequest(t, http.MethodGet, "/api/leases/"+lease.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decodeBody[dtos.LeaseView](t, resp)
	require.NotNil(t, view.Property)
	require.NotNil(t, view.Tenant)

	resp = doRequest(t, http.MethodPost, "/api/payments", token, dtos.CreatePaymentRequest{
		LeaseID:     lease.ID,
		Amount:      860,
		PaymentDate: "2024-09-03",
		PeriodMonth: 9,
		PeriodYear:  2024,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, "/api/payments/lease/"+lease.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]dtos.PaymentView](t, resp), 1)

	resp = doRequest(t, http.MethodPut, "/api/leases/"+lease.ID.String()+"/terminate?end_date=2025-01-31", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, "/api/properties/"+prop.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBody[models.Property](t, resp).IsOccupied)

	resp = doRequest(t, http.MethodGet, "/api/audit-logs/entity/lease/"+lease.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decodeBody[[]models.AuditLog](t, resp))
}

func TestHealthAgainstPostgres(t *testing.T) {
	resp := doRequest(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", decodeBody[dtos.HealthCheckResponse](t, resp).Status)
}
