package server

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/app"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func init() {
	utils.SilenceLogger()
	utils.PasswordHashCost = 4
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	encKey, err := utils.RandomKey(32)
	require.NoError(t, err)
	cfg := &config.Config{
		AppName:                  "rentals-service-test",
		Env:                      "test",
		Location:                 time.UTC,
		StorageBackend:           config.StorageBackendMemory,
		DBEncryptionKey:          encKey,
		MaxUploadBytes:           1024,
		RSAPrivateKey:            key,
		RSAPublicKey:             &key.PublicKey,
		TokenTTL:                 time.Hour,
		AuthRateLimitPerMinute:   6000,
		AuthRateLimitBurst:       100,
		LDFlag_SendgridFromEmail: "no-reply@example.com",
	}
	store, err := repositories.NewMemoryStore()
	require.NoError(t, err)
	blobs, err := services.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	srv := New(&app.App{Config: cfg, Store: store}, Deps{
		Clock:       utils.NewFixedClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)),
		Delivery:    &services.Delivery{FromEmail: "no-reply@example.com"},
		Blobs:       blobs,
		AuthLimiter: limiter,
	})
	return &testServer{t: t, handler: srv.Handler}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", dtos.RegisterRequest{
		Email:    email,
		Password: "secret123",
		Name:     "Marie Bailleur",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[dtos.TokenResponse](s.t, rec)
	require.NotEmpty(s.t, resp.AccessToken)
	return resp.AccessToken
}

func (s *testServer) createProperty(token string) models.Property {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/properties", token, dtos.PropertyRequest{
		Name:         "T2 Centre",
		Address:      "1 rue de la Paix",
		City:         "Lyon",
		PostalCode:   "69001",
		PropertyType: "appartement",
		RentAmount:   700,
		Charges:      50,
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Property](s.t, rec)
}

func (s *testServer) createTenant(token string) models.Tenant {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/tenants", token, dtos.TenantRequest{
		FirstName: "Jean",
		LastName:  "Locataire",
		Email:     "jean@example.com",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.Tenant](s.t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/health", "/api/"} {
		rec := s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", decode[dtos.HealthCheckResponse](t, rec).Status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/dashboard/stats", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("Owner@Example.com")

	rec := s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@example.com", decode[models.User](t, rec).Email)

	rec = s.do(http.MethodPost, "/api/auth/register", "", dtos.RegisterRequest{
		Email: "owner@example.com", Password: "secret123", Name: "Autre",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", dtos.LoginRequest{Email: "owner@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", dtos.LoginRequest{Email: "owner@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bearer", decode[dtos.TokenResponse](t, rec).TokenType)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(1, 1))
	body := dtos.LoginRequest{Email: "nobody@example.com", Password: "x"}

	rec := s.do(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("owner@example.com")

	rec := s.do(http.MethodPost, "/api/properties", token, map[string]any{"name": "Sans adresse"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, utils.ErrCodeValidation, decode[utils.ErrorResponse](t, rec).Code)

	rec = s.do(http.MethodGet, "/api/properties/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOccupancyLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("owner@example.com")
	prop := s.createProperty(token)
	tenant := s.createTenant(token)

	rec := s.do(http.MethodPost, "/api/leases", token, dtos.CreateLeaseRequest{
		PropertyID: prop.ID,
		TenantID:   tenant.ID,
		StartDate:  "2025-01-01",
		RentAmount: 700,
		Charges:    50,
		PaymentDay: 5,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lease := decode[models.Lease](t, rec)
	assert.True(t, lease.IsActive)

	rec = s.do(http.MethodGet, "/api/properties/"+prop.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Property](t, rec).IsOccupied)

	rec = s.do(http.MethodGet, "/api/reminders/pending", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[dtos.PendingPaymentsResponse](t, rec).Count)

	rec = s.do(http.MethodPost, "/api/payments", token, dtos.CreatePaymentRequest{
		LeaseID:       lease.ID,
		Amount:        750,
		PaymentDate:   "2025-03-05",
		PeriodMonth:   3,
		PeriodYear:    2025,
		PaymentMethod: "virement",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payment := decode[models.Payment](t, rec)

	rec = s.do(http.MethodGet, "/api/reminders/pending", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[dtos.PendingPaymentsResponse](t, rec).Count)

	rec = s.do(http.MethodGet, "/api/receipts/"+payment.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	receipt := decode[dtos.ReceiptResponse](t, rec).Receipt
	assert.Equal(t, "Jean Locataire", receipt.TenantName)
	assert.Equal(t, 750.0, receipt.Amount)

	rec = s.do(http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[dtos.DashboardStats](t, rec)
	assert.Equal(t, 1, stats.OccupiedProperties)
	assert.Equal(t, 750.0, stats.TotalCollected)
	assert.Equal(t, 100.0, stats.OccupancyRate)

	rec = s.do(http.MethodGet, "/api/export/payments/csv?year=2025", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "paiements_2025_")

	rec = s.do(http.MethodPut, "/api/leases/"+lease.ID.String()+"/terminate?end_date=2025-03-31", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/properties/"+prop.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.Property](t, rec).IsOccupied)

	rec = s.do(http.MethodGet, "/api/vacancies", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	vacancies := decode[[]dtos.VacancyView](t, rec)
	require.Len(t, vacancies, 1)
	assert.Equal(t, prop.ID, vacancies[0].PropertyID)

	rec = s.do(http.MethodGet, "/api/audit-logs?entity_type=lease", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[[]models.AuditLog](t, rec))
}

func TestOwnerIsolation(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")
	prop := s.createProperty(alice)

	rec := s.do(http.MethodGet, "/api/properties/"+prop.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/properties/"+prop.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/properties", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Property](t, rec))
}

func TestSendRemindersRequiresValidatedSMTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("owner@example.com")

	rec := s.do(http.MethodPost, "/api/reminders/send", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Configuration SMTP non validée", decode[utils.ErrorResponse](t, rec).Message)

	rec = s.do(http.MethodPost, "/api/reminders/test-smtp", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentUploadOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("owner@example.com")
	prop := s.createProperty(token)

	upload := func(content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "Bail signé"))
		require.NoError(t, mw.WriteField("document_type", "bail"))
		require.NoError(t, mw.WriteField("related_type", "property"))
		require.NoError(t, mw.WriteField("related_id", prop.ID.String()))
		fw, err := mw.CreateFormFile("file", "bail.pdf")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := upload([]byte("%PDF-1.4 contenu"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decode[models.Document](t, rec)
	assert.Equal(t, "bail.pdf", doc.Filename)

	rec = s.do(http.MethodGet, "/api/documents/"+doc.ID.String()+"/download", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 contenu", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bail.pdf")

	rec = s.do(http.MethodGet, "/api/documents?related_type=property&related_id="+prop.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Document](t, rec), 1)

	rec = upload(bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = s.do(http.MethodDelete, "/api/documents/"+doc.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/documents/"+doc.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamInvitationOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("owner@example.com")
	guest := s.register("guest@example.com")

	rec := s.do(http.MethodPost, "/api/teams", owner, dtos.CreateTeamRequest{Name: "Agence"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	team := decode[models.Team](t, rec)

	rec = s.do(http.MethodGet, "/api/teams/"+team.ID.String(), guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/teams/"+team.ID.String()+"/invite", owner, dtos.InviteRequest{
		Email: "guest@example.com", Role: "member",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	invite := decode[dtos.InviteResponse](t, rec)

	rec = s.do(http.MethodPost, "/api/teams/invitations/"+invite.InvitationToken+"/accept", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/teams/"+team.ID.String(), guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[dtos.TeamDetails](t, rec)
	assert.Len(t, details.Members, 2)
	assert.Equal(t, models.TeamRole("member"), details.MyRole)

	rec = s.do(http.MethodPost, "/api/teams/invitations/"+invite.InvitationToken+"/accept", guest, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
