package controllers

import (
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// POST /api/auth/register
func (c *AuthController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := c.authService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Failed to register user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/auth/login
func (c *AuthController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := c.authService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Login failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/auth/me
func (c *AuthController) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	user, err := c.authService.Me(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to load user")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
