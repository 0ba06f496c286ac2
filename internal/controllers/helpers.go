package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

var requestValidate = validator.New()

// ownerFromRequest reads the authenticated user. The auth middleware
// guarantees it on secured routes; a miss is answered with 401.
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing userID in context", nil)
		return uuid.Nil, false
	}
	return id, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, nil, err)
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON decodes and validates the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return false
	}
	return validateStruct(w, r, dst)
}

func validateStruct(w http.ResponseWriter, r *http.Request, v any) bool {
	err := requestValidate.StructCtx(r.Context(), v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeValidation, "Validation error", fields, err)
		return false
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
	return false
}

// queryDate parses name as YYYY-MM-DD, defaulting to today when absent.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return utils.DateOnly(time.Now().UTC()), true
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", name), nil, err)
		return time.Time{}, false
	}
	return d, true
}

// queryInt returns 0 when name is absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid "+name, nil, err)
		return 0, false
	}
	return v, true
}

func queryOptionalInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	if r.URL.Query().Get(name) == "" {
		return nil, true
	}
	v, ok := queryInt(w, r, name)
	if !ok {
		return nil, false
	}
	return &v, true
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{internal_utils.ErrPropertyNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Bien non trouvé"},
	{internal_utils.ErrTenantNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Locataire non trouvé"},
	{internal_utils.ErrLeaseNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Bail non trouvé"},
	{internal_utils.ErrNotFound, http.StatusNotFound, utils.ErrCodeNotFound, "Ressource non trouvée"},
	{internal_utils.ErrPropertyOccupied, http.StatusConflict, utils.ErrCodeConflict, "Ce bien est déjà occupé"},
	{internal_utils.ErrInvalidPayload, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Données invalides"},
	{internal_utils.ErrEmailExists, http.StatusBadRequest, utils.ErrCodeConflict, "Email déjà enregistré"},
	{internal_utils.ErrInvalidCredentials, http.StatusUnauthorized, utils.ErrCodeInvalidCredentials, "Email ou mot de passe incorrect"},
	{internal_utils.ErrForbidden, http.StatusForbidden, utils.ErrCodeForbidden, "Accès refusé"},
	{internal_utils.ErrSMTPNotConfigured, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Configuration SMTP non validée"},
	{internal_utils.ErrSMTPCredentialsMissing, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Configuration SMTP manquante"},
	{internal_utils.ErrDeliveryFailed, http.StatusBadRequest, utils.ErrCodeExternalServiceFailure, "Échec de l'envoi de l'email"},
	{internal_utils.ErrFileTooLarge, http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge, "Fichier trop volumineux"},
	{internal_utils.ErrInvitationInvalid, http.StatusNotFound, utils.ErrCodeNotFound, "Invitation invalide ou expirée"},
	{internal_utils.ErrInvitationMismatch, http.StatusForbidden, utils.ErrCodeForbidden, "Cette invitation ne vous est pas destinée"},
	{internal_utils.ErrAlreadyMember, http.StatusConflict, utils.ErrCodeConflict, "Déjà membre de l'équipe"},
}

// respondServiceError maps domain errors to their status; anything else
// is a 500 with the fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			utils.RespondErrorWithCode(w, m.status, m.code, m.message, nil, err)
			return
		}
	}
	utils.Logger.WithError(err).Error(fallback)
	utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, fallback, nil, err)
}
