package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func TestDashboardEmptyPortfolio(t *testing.T) {
	f := newFixture(t)
	st, err := f.dashboard.Stats(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, st.TotalProperties)
	assert.Zero(t, st.OccupancyRate)
	assert.Zero(t, st.PendingAmount)
	assert.Empty(t, st.RevenueChart)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	a := f.lease(t, f.property(t, "A", 500, 20), f.tenant(t, "Ana", "Lopez", ""), "2024-01-01")
	f.lease(t, f.property(t, "B", 800, 0), f.tenant(t, "Jean", "Dupont", ""), "2024-01-01")
	f.property(t, "C", 400, 0)

	f.pay(t, a, 520, "2025-03-05", 3, 2025)
	for m := 8; m <= 12; m++ {
		f.pay(t, a, 100, "2024-12-01", m, 2024)
	}
	f.pay(t, a, 50, "2024-07-01", 7, 2024)

	st, err := f.dashboard.Stats(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalProperties)
	assert.Equal(t, 2, st.OccupiedProperties)
	assert.Equal(t, 1, st.VacantProperties)
	assert.Equal(t, 2, st.ActiveLeases)
	assert.Equal(t, 1320.0, st.TotalMonthlyRent)
	assert.Equal(t, 520.0, st.TotalCollected)
	assert.Equal(t, 800.0, st.PendingAmount)
	assert.Equal(t, 66.7, st.OccupancyRate)

	require.Len(t, st.RevenueChart, 6)
	assert.Equal(t, dtos.RevenuePoint{Month: "2024-08", Amount: 100}, st.RevenueChart[0])
	assert.Equal(t, dtos.RevenuePoint{Month: "2025-03", Amount: 520}, st.RevenueChart[5])
}

func TestDashboardPendingMayGoNegative(t *testing.T) {
	f := newFixture(t)
	l := f.lease(t, f.property(t, "A", 500, 0), f.tenant(t, "Ana", "Lopez", ""), "2024-01-01")
	f.pay(t, l, 700, "2025-03-05", 3, 2025)

	st, err := f.dashboard.Stats(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, -200.0, st.PendingAmount)
}

func TestCalendarEvents(t *testing.T) {
	f := newFixture(t)
	p := f.property(t, "T2", 700, 40)
	tn := f.tenant(t, "Jean", "Dupont", "")
	l, err := f.leases.CreateLease(f.ctx, f.owner, dtos.CreateLeaseRequest{
		PropertyID: p.ID,
		TenantID:   tn.ID,
		StartDate:  "2024-06-01",
		EndDate:    utils.Ptr("2025-05-31"),
		RentAmount: 700,
		Charges:    40,
		PaymentDay: 31,
	})
	require.NoError(t, err)
	empty := f.property(t, "Studio", 400, 0)
	_, err = f.vacancies.CreateVacancy(f.ctx, f.owner, dtos.CreateVacancyRequest{PropertyID: empty.ID, StartDate: "2025-02-10"})
	require.NoError(t, err)

	t.Run("payment day clamped to month end", func(t *testing.T) {
		resp, err := f.calendar.Events(f.ctx, f.owner, 2, 2025)
		require.NoError(t, err)
		require.Len(t, resp.Events, 2)
		assert.Equal(t, dtos.EventVacancy, resp.Events[0].Type)
		due := resp.Events[1]
		assert.Equal(t, dtos.EventPaymentDue, due.Type)
		assert.Equal(t, "2025-02-28", due.Date)
		assert.Equal(t, "2025-02-28", due.BusinessDate)
		assert.Equal(t, 740.0, due.Amount)
	})

	t.Run("paid month, weekend due date and lease end", func(t *testing.T) {
		f.pay(t, l, 740, "2025-05-02", 5, 2025)
		resp, err := f.calendar.Events(f.ctx, f.owner, 5, 2025)
		require.NoError(t, err)
		require.Len(t, resp.Events, 2)
		for _, ev := range resp.Events {
			switch ev.Type {
			case dtos.EventPaymentDone:
				// 2025-05-31 is a Saturday.
				assert.Equal(t, "2025-05-31", ev.Date)
				assert.Equal(t, "2025-06-02", ev.BusinessDate)
			case dtos.EventLeaseEnd:
				assert.Equal(t, "2025-05-31", ev.Date)
			default:
				t.Fatalf("unexpected event %s", ev.Type)
			}
		}
	})

	t.Run("defaults to the current month", func(t *testing.T) {
		resp, err := f.calendar.Events(f.ctx, f.owner, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Month)
		assert.Equal(t, 2025, resp.Year)
	})
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, "2024-02-29", dueDate(2024, time.February, 31).Format(time.DateOnly))
	assert.Equal(t, "2025-04-30", dueDate(2025, time.April, 31).Format(time.DateOnly))
	assert.Equal(t, "2025-04-01", dueDate(2025, time.April, 0).Format(time.DateOnly))
}

func TestOccupancyRate(t *testing.T) {
	cases := []struct {
		occupied, total int
		want            float64
	}{
		{0, 0, 0},
		{1, 16, 6.2},
		{3, 16, 18.8},
		{2, 3, 66.7},
		{3, 3, 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, occupancyRate(c.occupied, c.total), "%d/%d", c.occupied, c.total)
	}
}
