package controllers

import (
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// LeaseController exposes the occupancy lifecycle: leases and vacancies.
type LeaseController struct {
	leases    *services.LeaseService
	vacancies *services.VacancyService
}

func NewLeaseController(l *services.LeaseService, v *services.VacancyService) *LeaseController {
	return &LeaseController{leases: l, vacancies: v}
}

// POST /api/leases
func (c *LeaseController) CreateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.CreateLeaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lease, err := c.leases.CreateLease(r.Context(), owner, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create lease")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, lease)
}

// GET /api/leases
func (c *LeaseController) ListLeasesHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.leases.ListLeases(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list leases")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/leases/{id}
func (c *LeaseController) GetLeaseHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	view, err := c.leases.GetLease(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to load lease")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// PUT /api/leases/{id}/terminate?end_date=YYYY-MM-DD
func (c *LeaseController) TerminateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	endDate, ok := queryDate(w, r, "end_date")
	if !ok {
		return
	}
	if _, err := c.leases.TerminateLease(r.Context(), owner, id, endDate); err != nil {
		respondServiceError(w, err, "Failed to terminate lease")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Bail terminé"})
}

// POST /api/vacancies
func (c *LeaseController) CreateVacancyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.CreateVacancyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := c.vacancies.CreateVacancy(r.Context(), owner, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create vacancy")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// GET /api/vacancies
func (c *LeaseController) ListVacanciesHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.vacancies.ListVacancies(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list vacancies")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PUT /api/vacancies/{id}/end?end_date=YYYY-MM-DD
func (c *LeaseController) EndVacancyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	endDate, ok := queryDate(w, r, "end_date")
	if !ok {
		return
	}
	if _, err := c.vacancies.EndVacancy(r.Context(), owner, id, endDate); err != nil {
		respondServiceError(w, err, "Failed to end vacancy")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Vacance terminée"})
}
