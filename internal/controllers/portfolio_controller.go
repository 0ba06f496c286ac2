package controllers

import (
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// PortfolioController serves property and tenant CRUD.
type PortfolioController struct {
	properties *services.PropertyService
	tenants    *services.TenantService
}

func NewPortfolioController(p *services.PropertyService, t *services.TenantService) *PortfolioController {
	return &PortfolioController{properties: p, tenants: t}
}

// ----------------------------------------------------------------
// Properties
// ----------------------------------------------------------------

func (c *PortfolioController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.PropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := c.properties.CreateProperty(r.Context(), owner, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (c *PortfolioController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.properties.ListProperties(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list properties")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (c *PortfolioController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	p, err := c.properties.GetProperty(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to load property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (c *PortfolioController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.PropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := c.properties.UpdateProperty(r.Context(), owner, id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

func (c *PortfolioController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.properties.DeleteProperty(r.Context(), owner, id); err != nil {
		respondServiceError(w, err, "Failed to delete property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Bien supprimé"})
}

// ----------------------------------------------------------------
// Tenants
// ----------------------------------------------------------------

func (c *PortfolioController) CreateTenantHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.TenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := c.tenants.CreateTenant(r.Context(), owner, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (c *PortfolioController) ListTenantsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.tenants.ListTenants(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list tenants")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (c *PortfolioController) GetTenantHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := c.tenants.GetTenant(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to load tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (c *PortfolioController) UpdateTenantHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.TenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := c.tenants.UpdateTenant(r.Context(), owner, id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, t)
}

func (c *PortfolioController) DeleteTenantHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.tenants.DeleteTenant(r.Context(), owner, id); err != nil {
		respondServiceError(w, err, "Failed to delete tenant")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Locataire supprimé"})
}
