package controllers

import (
	"net/http"

	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// NotificationController serves the settings, the inbox and the
// interactive reminder endpoints.
type NotificationController struct {
	notifications *services.NotificationService
	reminders     *services.ReminderService
}

func NewNotificationController(n *services.NotificationService, rem *services.ReminderService) *NotificationController {
	return &NotificationController{notifications: n, reminders: rem}
}

// GET /api/notifications/settings
func (c *NotificationController) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	resp, err := c.notifications.GetSettings(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to load settings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// PUT /api/notifications/settings
func (c *NotificationController) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := c.notifications.UpdateSettings(r.Context(), owner, req); err != nil {
		respondServiceError(w, err, "Failed to update settings")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Paramètres mis à jour avec succès"})
}

// GET /api/notifications
func (c *NotificationController) ListHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	list, err := c.notifications.List(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to list notifications")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PUT /api/notifications/{id}/read
func (c *NotificationController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.notifications.MarkRead(r.Context(), owner, id); err != nil {
		respondServiceError(w, err, "Failed to update notification")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Notification marquée comme lue"})
}

// PUT /api/notifications/read-all
func (c *NotificationController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	resp, err := c.notifications.MarkAllRead(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to update notifications")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/reminders/test-smtp
func (c *NotificationController) TestSMTPHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	if err := c.reminders.TestSMTP(r.Context(), owner); err != nil {
		respondServiceError(w, err, "SMTP test failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Email de test envoyé avec succès",
		"success": true,
	})
}

// POST /api/reminders/send
func (c *NotificationController) SendRemindersHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	resp, err := c.reminders.SendReminders(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err, "Failed to send reminders")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
