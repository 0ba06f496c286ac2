package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type TenantService struct {
	store repositories.Store
	audit *AuditService
}

func NewTenantService(store repositories.Store, audit *AuditService) *TenantService {
	return &TenantService{store: store, audit: audit}
}

func applyTenantRequest(t *models.Tenant, req dtos.TenantRequest) error {
	birth, err := utils.ParseOptionalDate(req.BirthDate)
	if err != nil {
		return fmt.Errorf("%w: birth_date", internal_utils.ErrInvalidPayload)
	}
	t.FirstName = req.FirstName
	t.LastName = req.LastName
	t.Email = req.Email
	t.Phone = req.Phone
	t.BirthDate = birth
	t.Profession = req.Profession
	t.EmergencyContact = req.EmergencyContact
	t.Notes = req.Notes
	return nil
}

func (s *TenantService) CreateTenant(ctx context.Context, ownerID uuid.UUID, req dtos.TenantRequest) (*models.Tenant, error) {
	t := &models.Tenant{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	if err := applyTenantRequest(t, req); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.ForOwner(ownerID).Tenants().Create(ctx, t); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityTenant,
			EntityID:   t.ID,
			EntityName: t.FullName(),
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TenantService) GetTenant(ctx context.Context, ownerID, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.store.ForOwner(ownerID).Tenants().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, missing(internal_utils.ErrTenantNotFound, id)
	}
	return t, nil
}

func (s *TenantService) ListTenants(ctx context.Context, ownerID uuid.UUID) ([]*models.Tenant, error) {
	tenants, err := s.store.ForOwner(ownerID).Tenants().List(ctx)
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []*models.Tenant{}
	}
	return tenants, nil
}

// UpdateTenant replaces the descriptive fields; the tenant's current
// property is kept.
func (s *TenantService) UpdateTenant(ctx context.Context, ownerID, id uuid.UUID, req dtos.TenantRequest) (*models.Tenant, error) {
	var updated *models.Tenant

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repo := tx.ForOwner(ownerID).Tenants()
		var before map[string]any
		err := repo.UpdateWithRetry(ctx, id, func(t *models.Tenant) error {
			before = tenantAuditFields(t)
			return applyTenantRequest(t, req)
		})
		if err != nil {
			return notFound(err, internal_utils.ErrTenantNotFound, id)
		}
		if updated, err = repo.GetByID(ctx, id); err != nil {
			return err
		}
		changes := diffFields(before, tenantAuditFields(updated))
		if len(changes) == 0 {
			return nil
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditUpdate,
			EntityType: models.EntityTenant,
			EntityID:   id,
			EntityName: updated.FullName(),
			Changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TenantService) DeleteTenant(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		repo := tx.ForOwner(ownerID).Tenants()
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return missing(internal_utils.ErrTenantNotFound, id)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFound(err, internal_utils.ErrTenantNotFound, id)
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditDelete,
			EntityType: models.EntityTenant,
			EntityID:   id,
			EntityName: t.FullName(),
		})
	})
}
