package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type TeamController struct {
	teams *services.TeamService
}

func NewTeamController(s *services.TeamService) *TeamController {
	return &TeamController{teams: s}
}

// POST /api/teams
func (c *TeamController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.CreateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	team, err := c.teams.Create(r.Context(), user, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create team")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, team)
}

// GET /api/teams
func (c *TeamController) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.teams.List(r.Context(), user)
	if err != nil {
		respondServiceError(w, err, "Failed to list teams")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/teams/{id}
func (c *TeamController) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := c.teams.Get(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err, "Failed to load team")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, details)
}

// PUT /api/teams/{id}
func (c *TeamController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.UpdateTeamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	team, err := c.teams.Update(r.Context(), user, id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to update team")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, team)
}

// DELETE /api/teams/{id}
func (c *TeamController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.teams.Delete(r.Context(), user, id); err != nil {
		respondServiceError(w, err, "Failed to delete team")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Équipe supprimée"})
}

// POST /api/teams/{id}/invite
func (c *TeamController) InviteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req dtos.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := c.teams.Invite(r.Context(), user, id, req)
	if err != nil {
		respondServiceError(w, err, "Failed to create invitation")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/teams/{id}/invitations
func (c *TeamController) InvitationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	list, err := c.teams.PendingInvitations(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err, "Failed to list invitations")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/teams/invitations/{token}/accept
func (c *TeamController) AcceptInvitationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	member, err := c.teams.AcceptInvitation(r.Context(), user, mux.Vars(r)["token"])
	if err != nil {
		respondServiceError(w, err, "Failed to accept invitation")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, member)
}
