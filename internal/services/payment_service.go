package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// PaymentService is the rent ledger. Payments are never checked against
// the lease rent; any payment for a period counts as paid.
type PaymentService struct {
	store repositories.Store
	audit *AuditService
	clock utils.Clock
	loc   *time.Location
}

func NewPaymentService(cfg *config.Config, store repositories.Store, audit *AuditService, clock utils.Clock) *PaymentService {
	return &PaymentService{store: store, audit: audit, clock: clock, loc: location(cfg)}
}

func location(cfg *config.Config) *time.Location {
	if cfg == nil || cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}

func (s *PaymentService) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *PaymentService) CreatePayment(ctx context.Context, ownerID uuid.UUID, req dtos.CreatePaymentRequest) (*models.Payment, error) {
	paidOn, err := utils.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: payment_date", internal_utils.ErrInvalidPayload)
	}
	method := models.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = models.PaymentMethodTransfer
	}

	p := &models.Payment{
		ID:            uuid.New(),
		LeaseID:       req.LeaseID,
		Amount:        req.Amount,
		PaymentDate:   paidOn,
		PeriodMonth:   req.PeriodMonth,
		PeriodYear:    req.PeriodYear,
		PaymentMethod: method,
		Notes:         req.Notes,
		Status:        models.PaymentStatusPaid,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)
		lease, err := repos.Leases().GetByID(ctx, req.LeaseID)
		if err != nil {
			return err
		}
		if lease == nil {
			return missing(internal_utils.ErrLeaseNotFound, req.LeaseID)
		}
		if err := repos.Payments().Create(ctx, p); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityPayment,
			EntityID:   p.ID,
			EntityName: models.PeriodLabel(p.PeriodYear, p.PeriodMonth),
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPayments returns payments newest first with property and tenant
// names resolved through the lease.
func (s *PaymentService) ListPayments(ctx context.Context, ownerID uuid.UUID) ([]dtos.PaymentView, error) {
	repos := s.store.ForOwner(ownerID)
	payments, err := repos.Payments().List(ctx)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, repos, payments)
}

func (s *PaymentService) ListLeasePayments(ctx context.Context, ownerID, leaseID uuid.UUID) ([]dtos.PaymentView, error) {
	repos := s.store.ForOwner(ownerID)
	payments, err := repos.Payments().ListByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, repos, payments)
}

func (s *PaymentService) enrich(ctx context.Context, repos repositories.OwnerStore, payments []*models.Payment) ([]dtos.PaymentView, error) {
	leases, err := repos.Leases().List(ctx)
	if err != nil {
		return nil, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
	if err != nil {
		return nil, err
	}
	byLease := indexLeases(leases)

	out := make([]dtos.PaymentView, 0, len(payments))
	for _, p := range payments {
		view := dtos.PaymentView{Payment: p}
		if l := byLease[p.LeaseID]; l != nil {
			view.PropertyName = propertyName(props[l.PropertyID])
			view.TenantName = tenantName(tenants[l.TenantID])
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, ownerID, paymentID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		repo := tx.ForOwner(ownerID).Payments()
		p, err := repo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return missing(internal_utils.ErrNotFound, paymentID)
		}
		if err := repo.Delete(ctx, paymentID); err != nil {
			return notFound(err, internal_utils.ErrNotFound, paymentID)
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditDelete,
			EntityType: models.EntityPayment,
			EntityID:   paymentID,
			EntityName: models.PeriodLabel(p.PeriodYear, p.PeriodMonth),
		})
	})
}

func (s *PaymentService) ListPaymentsForPeriod(ctx context.Context, ownerID uuid.UUID, month, year int) ([]*models.Payment, error) {
	return s.store.ForOwner(ownerID).Payments().ListForPeriod(ctx, month, year)
}

// unpaidLeases returns the active leases with no payment at all for the
// given period.
func unpaidLeases(ctx context.Context, repos repositories.OwnerStore, month, year int) ([]*models.Lease, error) {
	active, err := repos.Leases().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := repos.Payments().ListForPeriod(ctx, month, year)
	if err != nil {
		return nil, err
	}
	paidLeases := make(map[uuid.UUID]struct{}, len(paid))
	for _, p := range paid {
		paidLeases[p.LeaseID] = struct{}{}
	}

	var out []*models.Lease
	for _, l := range active {
		if _, ok := paidLeases[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// PendingPayments lists active leases still unpaid for the current month.
func (s *PaymentService) PendingPayments(ctx context.Context, ownerID uuid.UUID) (*dtos.PendingPaymentsResponse, error) {
	now := s.now()
	month, year := int(now.Month()), now.Year()

	repos := s.store.ForOwner(ownerID)
	leases, err := unpaidLeases(ctx, repos, month, year)
	if err != nil {
		return nil, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
	if err != nil {
		return nil, err
	}

	resp := &dtos.PendingPaymentsResponse{Pending: make([]dtos.PendingPayment, 0, len(leases))}
	for _, l := range leases {
		resp.Pending = append(resp.Pending, dtos.PendingPayment{
			LeaseID:     l.ID,
			Tenant:      tenantSummary(tenants[l.TenantID]),
			Property:    propertySummary(props[l.PropertyID]),
			AmountDue:   l.MonthlyDue(),
			PeriodMonth: month,
			PeriodYear:  year,
		})
	}
	resp.Count = len(resp.Pending)
	return resp, nil
}

// Receipt builds the rent receipt of a payment.
func (s *PaymentService) Receipt(ctx context.Context, ownerID, paymentID uuid.UUID) (*dtos.Receipt, error) {
	repos := s.store.ForOwner(ownerID)
	p, err := repos.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, missing(internal_utils.ErrNotFound, paymentID)
	}
	lease, err := repos.Leases().GetByID(ctx, p.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, missing(internal_utils.ErrLeaseNotFound, p.LeaseID)
	}
	prop, err := repos.Properties().GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	tenant, err := repos.Tenants().GetByID(ctx, lease.TenantID)
	if err != nil {
		return nil, err
	}
	landlord, err := s.store.Users().GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	r := &dtos.Receipt{
		PaymentID:     p.ID,
		TenantName:    tenantName(tenant),
		Period:        models.PeriodLabel(p.PeriodYear, p.PeriodMonth),
		PeriodMonth:   p.PeriodMonth,
		PeriodYear:    p.PeriodYear,
		RentAmount:    lease.RentAmount,
		Charges:       lease.Charges,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate.Format(utils.DateLayout),
		PaymentMethod: string(p.PaymentMethod),
	}
	if landlord != nil {
		r.LandlordName = landlord.Name
	}
	if prop != nil {
		r.PropertyName = prop.Name
		r.PropertyAddress = fmt.Sprintf("%s, %s %s", prop.Address, prop.PostalCode, prop.City)
	}
	return r, nil
}

type exportLine struct {
	payment  *models.Payment
	property string
	tenant   string
}

// exportLines selects payments for the year (all years when nil), drops
// payments whose lease is gone and sorts by payment date, newest first.
func (s *PaymentService) exportLines(ctx context.Context, ownerID uuid.UUID, year *int) ([]exportLine, error) {
	repos := s.store.ForOwner(ownerID)
	payments, err := repos.Payments().List(ctx)
	if err != nil {
		return nil, err
	}
	leases, err := repos.Leases().List(ctx)
	if err != nil {
		return nil, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
	if err != nil {
		return nil, err
	}
	byLease := indexLeases(leases)

	var out []exportLine
	for _, p := range payments {
		if year != nil && p.PeriodYear != *year {
			continue
		}
		l := byLease[p.LeaseID]
		if l == nil {
			continue
		}
		out = append(out, exportLine{
			payment:  p,
			property: propertyName(props[l.PropertyID]),
			tenant:   tenantName(tenants[l.TenantID]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].payment.PaymentDate.After(out[j].payment.PaymentDate)
	})
	return out, nil
}

func (s *PaymentService) ExportPayments(ctx context.Context, ownerID uuid.UUID, year *int) (*dtos.ExportResponse, error) {
	lines, err := s.exportLines(ctx, ownerID, year)
	if err != nil {
		return nil, err
	}
	resp := &dtos.ExportResponse{Year: year, Payments: make([]dtos.ExportRow, 0, len(lines))}
	for _, ln := range lines {
		p := ln.payment
		resp.Payments = append(resp.Payments, dtos.ExportRow{
			Date:      p.PaymentDate.Format(utils.DateLayout),
			Bien:      ln.property,
			Locataire: ln.tenant,
			Periode:   fmt.Sprintf("%d/%d", p.PeriodMonth, p.PeriodYear),
			Montant:   p.Amount,
			Methode:   string(p.PaymentMethod),
		})
		resp.Total += p.Amount
	}
	resp.Count = len(resp.Payments)
	return resp, nil
}

var exportCSVHeader = []string{"Date", "Bien", "Locataire", "Période", "Montant (€)", "Méthode de paiement"}

// ExportPaymentsCSV writes the export as CSV with a trailing TOTAL row.
func (s *PaymentService) ExportPaymentsCSV(ctx context.Context, ownerID uuid.UUID, year *int, w io.Writer) error {
	lines, err := s.exportLines(ctx, ownerID, year)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportCSVHeader); err != nil {
		return err
	}
	var total float64
	for _, ln := range lines {
		p := ln.payment
		total += p.Amount
		if err := cw.Write([]string{
			p.PaymentDate.Format(utils.DateLayout),
			ln.property,
			ln.tenant,
			models.PeriodLabel(p.PeriodYear, p.PeriodMonth),
			formatAmount(p.Amount),
			string(p.PaymentMethod),
		}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "", "", "TOTAL", formatAmount(total), ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename names the download, e.g. paiements_2025_20250314.csv.
func (s *PaymentService) ExportFilename(year *int) string {
	label := "tous"
	if year != nil {
		label = strconv.Itoa(*year)
	}
	return fmt.Sprintf("paiements_%s_%s.csv", label, s.now().Format("20060102"))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
