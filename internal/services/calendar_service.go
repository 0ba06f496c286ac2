package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type CalendarService struct {
	store repositories.Store
	clock utils.Clock
	loc   *time.Location
}

func NewCalendarService(cfg *config.Config, store repositories.Store, clock utils.Clock) *CalendarService {
	return &CalendarService{store: store, clock: clock, loc: location(cfg)}
}

// Events builds the month view. Zero month or year means the current one.
func (s *CalendarService) Events(ctx context.Context, ownerID uuid.UUID, month, year int) (*dtos.CalendarResponse, error) {
	now := s.clock.Now().In(s.loc)
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month", internal_utils.ErrInvalidPayload)
	}

	repos := s.store.ForOwner(ownerID)
	leases, err := repos.Leases().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
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

	events := make([]dtos.CalendarEvent, 0)
	for _, l := range leases {
		prop, tenant := props[l.PropertyID], tenants[l.TenantID]
		if prop == nil || tenant == nil {
			continue
		}

		due := dueDate(year, time.Month(month), l.PaymentDay)
		typ, title := dtos.EventPaymentDue, "Loyer à percevoir - "+tenant.FullName()
		if _, ok := paidLeases[l.ID]; ok {
			typ, title = dtos.EventPaymentDone, "Loyer perçu - "+tenant.FullName()
		}
		events = append(events, dtos.CalendarEvent{
			ID:           fmt.Sprintf("payment-%s-%s", l.ID, models.PeriodKey(year, month)),
			Type:         typ,
			Title:        title,
			Date:         due.Format(utils.DateLayout),
			BusinessDate: internal_utils.NextBusinessDay(due).Format(utils.DateLayout),
			Amount:       l.MonthlyDue(),
			PropertyName: prop.Name,
			TenantName:   tenant.FullName(),
			RelatedID:    l.ID.String(),
		})

		if l.EndDate != nil && inMonth(*l.EndDate, year, month) {
			events = append(events, dtos.CalendarEvent{
				ID:           "lease-end-" + l.ID.String(),
				Type:         dtos.EventLeaseEnd,
				Title:        "Fin de bail - " + tenant.FullName(),
				Date:         l.EndDate.Format(utils.DateLayout),
				PropertyName: prop.Name,
				TenantName:   tenant.FullName(),
				RelatedID:    l.ID.String(),
			})
		}
	}

	vacancies, err := repos.Vacancies().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range vacancies {
		if !inMonth(v.StartDate, year, month) {
			continue
		}
		prop := props[v.PropertyID]
		events = append(events, dtos.CalendarEvent{
			ID:           "vacancy-" + v.ID.String(),
			Type:         dtos.EventVacancy,
			Title:        "Vacance - " + propertyName(prop),
			Date:         v.StartDate.Format(utils.DateLayout),
			PropertyName: propertyName(prop),
			RelatedID:    v.ID.String(),
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return &dtos.CalendarResponse{Month: month, Year: year, Events: events}, nil
}

// dueDate places the payment day in the month, clamped to its last day.
func dueDate(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 {
		day = 1
	}
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func inMonth(t time.Time, year, month int) bool {
	return t.Year() == year && int(t.Month()) == month
}
