package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/metrics"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// LeaseService owns the occupancy state machine: a property goes
// VACANT -> OCCUPIED on CreateLease and back on TerminateLease. Each
// transition writes the lease, the property, the tenant and the vacancy
// records in one store transaction.
type LeaseService struct {
	cfg   *config.Config
	store repositories.Store
	audit *AuditService
}

func NewLeaseService(cfg *config.Config, store repositories.Store, audit *AuditService) *LeaseService {
	return &LeaseService{cfg: cfg, store: store, audit: audit}
}

// txStep tags a failure inside a transaction with the step that failed.
type txStep struct {
	step string
	err  error
}

func (e *txStep) Error() string { return e.step + ": " + e.err.Error() }
func (e *txStep) Unwrap() error { return e.err }

func stepErr(step string, err error) error {
	if err == nil {
		return nil
	}
	return &txStep{step: step, err: err}
}

func logRollback(op string, ownerID, id uuid.UUID, err error) {
	fields := logrus.Fields{"operation": op, "owner_id": ownerID, "id": id}
	var se *txStep
	if errors.As(err, &se) {
		fields["step"] = se.step
	}
	if isDomainError(err) {
		utils.Logger.WithFields(fields).WithError(err).Info("Lease transition rejected")
		return
	}
	utils.Logger.WithFields(fields).WithError(err).Error("Lease transition rolled back")
}

// CreateLease activates a lease and marks the property occupied. With the
// enforce_single_active_lease flag on, an occupied property is rejected
// with ErrPropertyOccupied; otherwise the newest lease wins the property.
func (s *LeaseService) CreateLease(ctx context.Context, ownerID uuid.UUID, req dtos.CreateLeaseRequest) (*models.Lease, error) {
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date", internal_utils.ErrInvalidPayload)
	}
	endDate, err := utils.ParseOptionalDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date", internal_utils.ErrInvalidPayload)
	}
	paymentDay := req.PaymentDay
	if paymentDay == 0 {
		paymentDay = 1
	}

	guard := s.cfg.LDFlag_EnforceSingleActiveLease
	lease := &models.Lease{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		StartDate:  startDate,
		EndDate:    endDate,
		RentAmount: req.RentAmount,
		Charges:    req.Charges,
		Deposit:    req.Deposit,
		PaymentDay: paymentDay,
		Notes:      req.Notes,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)

		prop, err := repos.Properties().GetByID(ctx, req.PropertyID)
		if err != nil {
			return stepErr("load property", err)
		}
		if prop == nil {
			return missing(internal_utils.ErrPropertyNotFound, req.PropertyID)
		}
		tenant, err := repos.Tenants().GetByID(ctx, req.TenantID)
		if err != nil {
			return stepErr("load tenant", err)
		}
		if tenant == nil {
			return missing(internal_utils.ErrTenantNotFound, req.TenantID)
		}

		if err := repos.Leases().Create(ctx, lease); err != nil {
			return stepErr("insert lease", err)
		}
		if err := repos.Properties().MarkOccupied(ctx, prop.ID, tenant.ID, guard); err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return fmt.Errorf("%w: %s", internal_utils.ErrPropertyOccupied, prop.ID)
			}
			return stepErr("mark property occupied", err)
		}
		if err := repos.Tenants().SetCurrentProperty(ctx, tenant.ID, &prop.ID); err != nil {
			return stepErr("assign tenant", err)
		}
		closed, err := repos.Vacancies().CloseActiveForProperty(ctx, prop.ID, startDate)
		if err != nil {
			return stepErr("close vacancies", err)
		}
		if closed > 0 {
			utils.Logger.WithFields(logrus.Fields{
				"property_id": prop.ID,
				"closed":      closed,
			}).Debug("Closed active vacancies on lease start")
		}

		return stepErr("audit", s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityLease,
			EntityID:   lease.ID,
			EntityName: leaseName(prop, tenant),
		}))
	})
	if err != nil {
		logRollback("create_lease", ownerID, lease.ID, err)
		metrics.RecordLeaseTransition("create", transitionOutcome(err))
		return nil, err
	}

	metrics.RecordLeaseTransition("create", "ok")
	utils.Logger.WithFields(logrus.Fields{
		"lease_id":    lease.ID,
		"property_id": lease.PropertyID,
		"tenant_id":   lease.TenantID,
	}).Info("Lease created")
	return lease, nil
}

// TerminateLease ends the lease on endDate, frees the property and the
// tenant and opens a vacancy starting that day. endDate is not checked
// against the start date and an inactive lease may be terminated again.
func (s *LeaseService) TerminateLease(ctx context.Context, ownerID, leaseID uuid.UUID, endDate time.Time) (*models.Lease, error) {
	endDate = utils.DateOnly(endDate)
	var terminated *models.Lease

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)

		lease, err := repos.Leases().GetByID(ctx, leaseID)
		if err != nil {
			return stepErr("load lease", err)
		}
		if lease == nil {
			return missing(internal_utils.ErrLeaseNotFound, leaseID)
		}
		before := map[string]any{"is_active": lease.IsActive, "end_date": formatOptionalDate(lease.EndDate)}

		if err := repos.Leases().Terminate(ctx, lease.ID, endDate); err != nil {
			return stepErr("terminate lease", notFound(err, internal_utils.ErrLeaseNotFound, leaseID))
		}

		// Property and tenant may have been deleted since the lease began.
		prop, err := repos.Properties().GetByID(ctx, lease.PropertyID)
		if err != nil {
			return stepErr("load property", err)
		}
		if prop != nil {
			if err := repos.Properties().MarkVacant(ctx, prop.ID); err != nil {
				return stepErr("mark property vacant", err)
			}
		}
		tenant, err := repos.Tenants().GetByID(ctx, lease.TenantID)
		if err != nil {
			return stepErr("load tenant", err)
		}
		if tenant != nil {
			if err := repos.Tenants().SetCurrentProperty(ctx, tenant.ID, nil); err != nil {
				return stepErr("release tenant", err)
			}
		}

		vacancy := &models.Vacancy{
			ID:         uuid.New(),
			PropertyID: lease.PropertyID,
			StartDate:  endDate,
			Reason:     utils.Ptr(models.VacancyReasonLeaseEnded),
			IsActive:   true,
			CreatedAt:  time.Now().UTC(),
		}
		if err := repos.Vacancies().Create(ctx, vacancy); err != nil {
			return stepErr("open vacancy", err)
		}

		lease.IsActive = false
		lease.EndDate = &endDate
		terminated = lease

		return stepErr("audit", s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditUpdate,
			EntityType: models.EntityLease,
			EntityID:   lease.ID,
			EntityName: leaseName(prop, tenant),
			Changes: diffFields(before, map[string]any{
				"is_active": false,
				"end_date":  endDate.Format(utils.DateLayout),
			}),
		}))
	})
	if err != nil {
		logRollback("terminate_lease", ownerID, leaseID, err)
		metrics.RecordLeaseTransition("terminate", transitionOutcome(err))
		return nil, err
	}

	metrics.RecordLeaseTransition("terminate", "ok")
	utils.Logger.WithFields(logrus.Fields{
		"lease_id":    terminated.ID,
		"property_id": terminated.PropertyID,
		"end_date":    endDate.Format(utils.DateLayout),
	}).Info("Lease terminated")
	return terminated, nil
}

func (s *LeaseService) GetLease(ctx context.Context, ownerID, leaseID uuid.UUID) (*dtos.LeaseView, error) {
	repos := s.store.ForOwner(ownerID)
	lease, err := repos.Leases().GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, missing(internal_utils.ErrLeaseNotFound, leaseID)
	}
	prop, err := repos.Properties().GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	tenant, err := repos.Tenants().GetByID(ctx, lease.TenantID)
	if err != nil {
		return nil, err
	}
	return &dtos.LeaseView{Lease: lease, Property: propertySummary(prop), Tenant: tenantSummary(tenant)}, nil
}

// ListLeases returns every lease of the owner, newest first, enriched with
// property and tenant summaries.
func (s *LeaseService) ListLeases(ctx context.Context, ownerID uuid.UUID) ([]dtos.LeaseView, error) {
	repos := s.store.ForOwner(ownerID)
	leases, err := repos.Leases().List(ctx)
	if err != nil {
		return nil, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(leases, func(i, j int) bool { return leases[i].CreatedAt.After(leases[j].CreatedAt) })
	out := make([]dtos.LeaseView, 0, len(leases))
	for _, l := range leases {
		out = append(out, dtos.LeaseView{
			Lease:    l,
			Property: propertySummary(props[l.PropertyID]),
			Tenant:   tenantSummary(tenants[l.TenantID]),
		})
	}
	return out, nil
}

func loadPortfolio(ctx context.Context, repos repositories.OwnerStore) (propertyIndex, tenantIndex, error) {
	props, err := repos.Properties().List(ctx)
	if err != nil {
		return nil, nil, err
	}
	tenants, err := repos.Tenants().List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return indexProperties(props), indexTenants(tenants), nil
}

func leaseName(p *models.Property, t *models.Tenant) string {
	switch {
	case p != nil && t != nil:
		return p.Name + " - " + t.FullName()
	case p != nil:
		return p.Name
	case t != nil:
		return t.FullName()
	}
	return ""
}

func transitionOutcome(err error) string {
	if errors.Is(err, internal_utils.ErrPropertyOccupied) {
		return "conflict"
	}
	if isDomainError(err) {
		return "rejected"
	}
	return "error"
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(utils.DateLayout)
}
