package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type DashboardService struct {
	store repositories.Store
	clock utils.Clock
	loc   *time.Location
}

func NewDashboardService(cfg *config.Config, store repositories.Store, clock utils.Clock) *DashboardService {
	return &DashboardService{store: store, clock: clock, loc: location(cfg)}
}

// Stats aggregates the owner's portfolio for the current month. The
// pending amount is expected rent minus collected and may go negative.
func (s *DashboardService) Stats(ctx context.Context, ownerID uuid.UUID) (*dtos.DashboardStats, error) {
	repos := s.store.ForOwner(ownerID)
	now := s.clock.Now().In(s.loc)

	props, err := repos.Properties().List(ctx)
	if err != nil {
		return nil, err
	}
	tenants, err := repos.Tenants().List(ctx)
	if err != nil {
		return nil, err
	}
	leases, err := repos.Leases().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	current, err := repos.Payments().ListForPeriod(ctx, int(now.Month()), now.Year())
	if err != nil {
		return nil, err
	}
	vacancies, err := repos.Vacancies().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	all, err := repos.Payments().List(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := repos.Notifications().CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	st := &dtos.DashboardStats{
		TotalProperties:     len(props),
		TotalTenants:        len(tenants),
		ActiveLeases:        len(leases),
		ActiveVacancies:     len(vacancies),
		UnreadNotifications: unread,
	}
	for _, p := range props {
		if p.IsOccupied {
			st.OccupiedProperties++
		}
	}
	st.VacantProperties = st.TotalProperties - st.OccupiedProperties
	for _, l := range leases {
		st.TotalMonthlyRent += l.MonthlyDue()
	}
	for _, p := range current {
		st.TotalCollected += p.Amount
	}
	st.PendingAmount = st.TotalMonthlyRent - st.TotalCollected
	st.OccupancyRate = occupancyRate(st.OccupiedProperties, st.TotalProperties)
	st.RevenueChart = revenueChart(all, constants.RevenueChartMonths)
	return st, nil
}

func occupancyRate(occupied, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.RoundToEven(float64(occupied)/float64(total)*1000) / 10
}

// revenueChart sums payments by period and keeps the latest n periods
// that have payments, oldest first.
func revenueChart(payments []*models.Payment, n int) []dtos.RevenuePoint {
	totals := make(map[string]float64)
	for _, p := range payments {
		totals[p.PeriodKey()] += p.Amount
	}
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make([]dtos.RevenuePoint, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = dtos.RevenuePoint{Month: k, Amount: totals[k]}
	}
	return out
}
