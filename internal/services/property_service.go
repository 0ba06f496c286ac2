package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
)

type PropertyService struct {
	store repositories.Store
	audit *AuditService
}

func NewPropertyService(store repositories.Store, audit *AuditService) *PropertyService {
	return &PropertyService{store: store, audit: audit}
}

func applyPropertyRequest(p *models.Property, req dtos.PropertyRequest) {
	p.Name = req.Name
	p.Address = req.Address
	p.City = req.City
	p.PostalCode = req.PostalCode
	p.PropertyType = req.PropertyType
	p.Surface = req.Surface
	p.Rooms = req.Rooms
	p.RentAmount = req.RentAmount
	p.Charges = req.Charges
	p.Description = req.Description
	p.ImageURL = req.ImageURL
}

// CreateProperty adds a vacant property.
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID uuid.UUID, req dtos.PropertyRequest) (*models.Property, error) {
	p := &models.Property{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	applyPropertyRequest(p, req)

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.ForOwner(ownerID).Properties().Create(ctx, p); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityProperty,
			EntityID:   p.ID,
			EntityName: p.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, ownerID, id uuid.UUID) (*models.Property, error) {
	p, err := s.store.ForOwner(ownerID).Properties().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, missing(internal_utils.ErrPropertyNotFound, id)
	}
	return p, nil
}

func (s *PropertyService) ListProperties(ctx context.Context, ownerID uuid.UUID) ([]*models.Property, error) {
	props, err := s.store.ForOwner(ownerID).Properties().List(ctx)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = []*models.Property{}
	}
	return props, nil
}

// UpdateProperty replaces the descriptive fields. Occupancy is left to
// the lease lifecycle.
func (s *PropertyService) UpdateProperty(ctx context.Context, ownerID, id uuid.UUID, req dtos.PropertyRequest) (*models.Property, error) {
	var updated *models.Property

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repo := tx.ForOwner(ownerID).Properties()
		var before map[string]any
		err := repo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
			before = propertyAuditFields(p)
			applyPropertyRequest(p, req)
			return nil
		})
		if err != nil {
			return notFound(err, internal_utils.ErrPropertyNotFound, id)
		}
		if updated, err = repo.GetByID(ctx, id); err != nil {
			return err
		}
		changes := diffFields(before, propertyAuditFields(updated))
		if len(changes) == 0 {
			return nil
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditUpdate,
			EntityType: models.EntityProperty,
			EntityID:   id,
			EntityName: updated.Name,
			Changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PropertyService) DeleteProperty(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		repo := tx.ForOwner(ownerID).Properties()
		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return missing(internal_utils.ErrPropertyNotFound, id)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return notFound(err, internal_utils.ErrPropertyNotFound, id)
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditDelete,
			EntityType: models.EntityProperty,
			EntityID:   id,
			EntityName: p.Name,
		})
	})
}
