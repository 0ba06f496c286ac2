package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func init() {
	utils.SilenceLogger()
}

var errBoom = errors.New("boom")

type fixture struct {
	ctx   context.Context
	cfg   *config.Config
	store *repositories.MemoryStore
	clock *utils.FixedClock
	owner uuid.UUID

	audit         *AuditService
	leases        *LeaseService
	vacancies     *VacancyService
	properties    *PropertyService
	tenants       *TenantService
	payments      *PaymentService
	dashboard     *DashboardService
	calendar      *CalendarService
	notifications *NotificationService
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	encKey, err := utils.RandomKey(32)
	require.NoError(t, err)
	return &config.Config{
		AppName:                  "rentals-service-test",
		Env:                      "test",
		Location:                 time.UTC,
		DBEncryptionKey:          encKey,
		MaxUploadBytes:           1024,
		RSAPrivateKey:            key,
		RSAPublicKey:             &key.PublicKey,
		TokenTTL:                 time.Hour,
		LDFlag_SendgridFromEmail: "no-reply@example.com",
	}
}

// newFixture builds every service on a memory store with the clock fixed
// at 2025-03-10 (a Monday).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := repositories.NewMemoryStore()
	require.NoError(t, err)

	f := &fixture{
		ctx:   context.Background(),
		cfg:   testConfig(t),
		store: store,
		clock: utils.NewFixedClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)),
		owner: uuid.New(),
	}
	require.NoError(t, store.Users().Create(f.ctx, &models.User{
		ID:        f.owner,
		Email:     "owner@example.com",
		Name:      "Marie Bailleur",
		CreatedAt: time.Now().UTC(),
	}))

	f.audit = NewAuditService(store)
	f.leases = NewLeaseService(f.cfg, store, f.audit)
	f.vacancies = NewVacancyService(store, f.audit)
	f.properties = NewPropertyService(store, f.audit)
	f.tenants = NewTenantService(store, f.audit)
	f.payments = NewPaymentService(f.cfg, store, f.audit, f.clock)
	f.dashboard = NewDashboardService(f.cfg, store, f.clock)
	f.calendar = NewCalendarService(f.cfg, store, f.clock)
	f.notifications = NewNotificationService(f.cfg, store)
	return f
}

func (f *fixture) property(t *testing.T, name string, rent, charges float64) *models.Property {
	t.Helper()
	p, err := f.properties.CreateProperty(f.ctx, f.owner, dtos.PropertyRequest{
		Name:         name,
		Address:      "12 rue des Lilas",
		City:         "Lyon",
		PostalCode:   "69003",
		PropertyType: "appartement",
		Surface:      45,
		Rooms:        2,
		RentAmount:   rent,
		Charges:      charges,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) tenant(t *testing.T, first, last, email string) *models.Tenant {
	t.Helper()
	tn, err := f.tenants.CreateTenant(f.ctx, f.owner, dtos.TenantRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     "+33600000000",
	})
	require.NoError(t, err)
	return tn
}

func (f *fixture) lease(t *testing.T, p *models.Property, tn *models.Tenant, start string) *models.Lease {
	t.Helper()
	l, err := f.leases.CreateLease(f.ctx, f.owner, dtos.CreateLeaseRequest{
		PropertyID: p.ID,
		TenantID:   tn.ID,
		StartDate:  start,
		RentAmount: p.RentAmount,
		Charges:    p.Charges,
		Deposit:    p.RentAmount,
		PaymentDay: 5,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) pay(t *testing.T, l *models.Lease, amount float64, date string, month, year int) *models.Payment {
	t.Helper()
	p, err := f.payments.CreatePayment(f.ctx, f.owner, dtos.CreatePaymentRequest{
		LeaseID:     l.ID,
		Amount:      amount,
		PaymentDate: date,
		PeriodMonth: month,
		PeriodYear:  year,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) getProperty(t *testing.T, id uuid.UUID) *models.Property {
	t.Helper()
	p, err := f.store.ForOwner(f.owner).Properties().GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) getTenant(t *testing.T, id uuid.UUID) *models.Tenant {
	t.Helper()
	tn, err := f.store.ForOwner(f.owner).Tenants().GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tn)
	return tn
}

/* ------------------------------------------------------------------
   failure injection
------------------------------------------------------------------ */

// failingVacancyStore fails every vacancy insert, inside or outside a
// transaction.
type failingVacancyStore struct {
	repositories.Store
}

func (s failingVacancyStore) ForOwner(id uuid.UUID) repositories.OwnerStore {
	return failingVacancyOwner{s.Store.ForOwner(id)}
}

func (s failingVacancyStore) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.WithTx(ctx, func(tx repositories.Store) error {
		return fn(failingVacancyStore{tx})
	})
}

type failingVacancyOwner struct {
	repositories.OwnerStore
}

func (o failingVacancyOwner) Vacancies() repositories.VacancyRepository {
	return failingVacancies{o.OwnerStore.Vacancies()}
}

type failingVacancies struct {
	repositories.VacancyRepository
}

func (failingVacancies) Create(context.Context, *models.Vacancy) error { return errBoom }

/* ------------------------------------------------------------------
   fake delivery
------------------------------------------------------------------ */

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Email
	failTo map[string]bool
	err    error
}

func (m *fakeMailer) Send(_ context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failTo[e.ToEmail] {
		return errBoom
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, e := range m.sent {
		out = append(out, e.ToEmail)
	}
	return out
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (s *fakeSMS) SendSMS(_ context.Context, to, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

// fakeDelivery routes every SMTP send to mailer and records the
// credentials it was built with.
func fakeDelivery(mailer *fakeMailer) (*Delivery, *[]SMTPCredentials) {
	var used []SMTPCredentials
	return &Delivery{
		NewSMTP: func(c SMTPCredentials) EmailSender {
			used = append(used, c)
			return mailer
		},
		FromEmail: "no-reply@example.com",
	}, &used
}
