package controllers

import (
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type DashboardController struct {
	dashboard *services.DashboardService
	calendar  *services.CalendarService
}

func NewDashboardController(d *services.DashboardService, c *services.CalendarService) *DashboardController {
	return &DashboardController{dashboard: d, calendar: c}
}

// GET /api/dashboard/stats
func (c *DashboardController) StatsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	stats, err := c.dashboard.Stats(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to compute dashboard")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GET /api/calendar/events?month=&year=
func (c *DashboardController) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	resp, err := c.calendar.Events(r.Context(), owner, month, year)
	if err != nil {
		respondServiceError(w, err, "Failed to build calendar")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
