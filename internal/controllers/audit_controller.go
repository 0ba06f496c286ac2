package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type AuditController struct {
	audit *services.AuditService
}

func NewAuditController(s *services.AuditService) *AuditController {
	return &AuditController{audit: s}
}

// GET /api/audit-logs?entity_type=&limit=
func (c *AuditController) ListHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	entityType := models.AuditEntityType(r.URL.Query().Get("entity_type"))
	logs, err := c.audit.List(r.Context(), owner, entityType, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to list audit logs")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}

// GET /api/audit-logs/entity/{type}/{id}
func (c *AuditController) EntityHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	entityType := models.AuditEntityType(mux.Vars(r)["type"])
	logs, err := c.audit.ListForEntity(r.Context(), owner, entityType, id)
	if err != nil {
		respondServiceError(w, err, "Failed to list audit logs")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, logs)
}
