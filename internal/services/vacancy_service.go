package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type VacancyService struct {
	store repositories.Store
	audit *AuditService
}

func NewVacancyService(store repositories.Store, audit *AuditService) *VacancyService {
	return &VacancyService{store: store, audit: audit}
}

// CreateVacancy records a vacancy by hand. The property must be owned.
func (s *VacancyService) CreateVacancy(ctx context.Context, ownerID uuid.UUID, req dtos.CreateVacancyRequest) (*models.Vacancy, error) {
	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date", internal_utils.ErrInvalidPayload)
	}
	endDate, err := utils.ParseOptionalDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date", internal_utils.ErrInvalidPayload)
	}

	v := &models.Vacancy{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		IsActive:   endDate == nil,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)
		prop, err := repos.Properties().GetByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if prop == nil {
			return missing(internal_utils.ErrPropertyNotFound, req.PropertyID)
		}
		if err := repos.Vacancies().Create(ctx, v); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityVacancy,
			EntityID:   v.ID,
			EntityName: prop.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// EndVacancy closes the vacancy on endDate. Ending it twice is harmless.
func (s *VacancyService) EndVacancy(ctx context.Context, ownerID, vacancyID uuid.UUID, endDate time.Time) (*models.Vacancy, error) {
	endDate = utils.DateOnly(endDate)
	var ended *models.Vacancy

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)
		v, err := repos.Vacancies().GetByID(ctx, vacancyID)
		if err != nil {
			return err
		}
		if v == nil {
			return missing(internal_utils.ErrNotFound, vacancyID)
		}
		if err := repos.Vacancies().End(ctx, vacancyID, endDate); err != nil {
			return notFound(err, internal_utils.ErrNotFound, vacancyID)
		}
		before := map[string]any{"is_active": v.IsActive, "end_date": formatOptionalDate(v.EndDate)}
		v.IsActive = false
		v.EndDate = &endDate
		ended = v

		changes := diffFields(before, map[string]any{"is_active": false, "end_date": endDate.Format(utils.DateLayout)})
		if len(changes) == 0 {
			return nil
		}
		prop, err := repos.Properties().GetByID(ctx, v.PropertyID)
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditUpdate,
			EntityType: models.EntityVacancy,
			EntityID:   v.ID,
			EntityName: propertyName(prop),
			Changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

// ListVacancies returns the owner's vacancies newest first with their
// property summary.
func (s *VacancyService) ListVacancies(ctx context.Context, ownerID uuid.UUID) ([]dtos.VacancyView, error) {
	repos := s.store.ForOwner(ownerID)
	vacancies, err := repos.Vacancies().List(ctx)
	if err != nil {
		return nil, err
	}
	props, err := repos.Properties().List(ctx)
	if err != nil {
		return nil, err
	}
	byID := indexProperties(props)

	sort.SliceStable(vacancies, func(i, j int) bool { return vacancies[i].StartDate.After(vacancies[j].StartDate) })
	out := make([]dtos.VacancyView, 0, len(vacancies))
	for _, v := range vacancies {
		out = append(out, dtos.VacancyView{Vacancy: v, Property: propertySummary(byID[v.PropertyID])})
	}
	return out, nil
}
