package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// NotificationService owns the per-landlord settings row and the in-app
// inbox.
type NotificationService struct {
	store  repositories.Store
	encKey []byte
}

func NewNotificationService(cfg *config.Config, store repositories.Store) *NotificationService {
	return &NotificationService{store: store, encKey: cfg.DBEncryptionKey}
}

func settingsResponse(s *models.NotificationSettings) *dtos.SettingsResponse {
	return &dtos.SettingsResponse{
		NotificationSettings: s,
		HasSMTPPassword:      s.SMTPPasswordEnc != nil && *s.SMTPPasswordEnc != "",
	}
}

// loadSettings returns the stored row, creating the defaults on first use.
func loadSettings(ctx context.Context, repos repositories.OwnerStore) (*models.NotificationSettings, error) {
	s, err := repos.Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	s = models.DefaultNotificationSettings(repos.OwnerID())
	if err := repos.Settings().Upsert(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *NotificationService) GetSettings(ctx context.Context, ownerID uuid.UUID) (*dtos.SettingsResponse, error) {
	var out *models.NotificationSettings
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		out, err = loadSettings(ctx, tx.ForOwner(ownerID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return settingsResponse(out), nil
}

// UpdateSettings applies a partial update. Touching any SMTP credential
// clears smtp_configured until the next successful test.
func (s *NotificationService) UpdateSettings(ctx context.Context, ownerID uuid.UUID, req dtos.UpdateSettingsRequest) (*dtos.SettingsResponse, error) {
	var out *models.NotificationSettings
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)
		cur, err := loadSettings(ctx, repos)
		if err != nil {
			return err
		}
		if err := s.apply(cur, req); err != nil {
			return err
		}
		out = cur
		return repos.Settings().Upsert(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return settingsResponse(out), nil
}

func (s *NotificationService) apply(cur *models.NotificationSettings, req dtos.UpdateSettingsRequest) error {
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&cur.LatePayment, req.LatePayment)
	setInt(&cur.LatePaymentDays, req.LatePaymentDays)
	setBool(&cur.LeaseEnding, req.LeaseEnding)
	setInt(&cur.LeaseEndingDays, req.LeaseEndingDays)
	setBool(&cur.VacancyAlert, req.VacancyAlert)
	setInt(&cur.VacancyAlertDays, req.VacancyAlertDays)
	setBool(&cur.EmailReminders, req.EmailReminders)
	setBool(&cur.SMSReminders, req.SMSReminders)
	if req.ReminderFrequency != nil {
		cur.ReminderFrequency = models.ReminderFrequency(*req.ReminderFrequency)
	}
	if req.ReminderWeekday != nil {
		cur.ReminderWeekday = time.Weekday(*req.ReminderWeekday)
	}

	credsChanged := false
	if req.SMTPEmail != nil {
		email := strings.TrimSpace(*req.SMTPEmail)
		if email != utils.Val(cur.SMTPEmail) {
			credsChanged = true
		}
		if email == "" {
			cur.SMTPEmail = nil
		} else {
			cur.SMTPEmail = &email
		}
	}
	if req.SMTPHost != nil && *req.SMTPHost != cur.SMTPHost {
		cur.SMTPHost = *req.SMTPHost
		credsChanged = true
	}
	if req.SMTPPort != nil && *req.SMTPPort != cur.SMTPPort {
		cur.SMTPPort = *req.SMTPPort
		credsChanged = true
	}
	if req.SMTPPassword != nil && *req.SMTPPassword != "" {
		enc, err := utils.Encrypt(s.encKey, *req.SMTPPassword)
		if err != nil {
			return fmt.Errorf("encrypt smtp password: %w", err)
		}
		cur.SMTPPasswordEnc = &enc
		credsChanged = true
	}
	if credsChanged {
		cur.SMTPConfigured = false
	}
	return nil
}

// smtpCredentials decrypts the stored password. It returns nil when the
// landlord has not provided both an address and a password.
func (s *NotificationService) smtpCredentials(settings *models.NotificationSettings) (*SMTPCredentials, error) {
	if settings.SMTPEmail == nil || *settings.SMTPEmail == "" ||
		settings.SMTPPasswordEnc == nil || *settings.SMTPPasswordEnc == "" {
		return nil, nil
	}
	password, err := utils.Decrypt(s.encKey, *settings.SMTPPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt smtp password: %w", err)
	}
	host := settings.SMTPHost
	if host == "" {
		host = models.DefaultSMTPHost
	}
	port := settings.SMTPPort
	if port == 0 {
		port = models.DefaultSMTPPort
	}
	return &SMTPCredentials{
		Host:     host,
		Port:     port,
		Username: *settings.SMTPEmail,
		Password: password,
	}, nil
}

func (s *NotificationService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Notification, error) {
	return s.store.ForOwner(ownerID).Notifications().List(ctx, constants.NotificationsListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.store.ForOwner(ownerID).Notifications().MarkRead(ctx, id)
	return notFound(err, internal_utils.ErrNotFound, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, ownerID uuid.UUID) (*dtos.MarkAllReadResponse, error) {
	n, err := s.store.ForOwner(ownerID).Notifications().MarkAllRead(ctx)
	if err != nil {
		return nil, err
	}
	return &dtos.MarkAllReadResponse{
		Message: "Toutes les notifications ont été marquées comme lues",
		Updated: n,
	}, nil
}

func notify(
	ctx context.Context,
	repos repositories.OwnerStore,
	typ models.NotificationType,
	title, message string,
	relatedID *uuid.UUID,
) {
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    repos.OwnerID(),
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repos.Notifications().Create(ctx, n); err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"owner_id": repos.OwnerID(),
			"type":     typ,
		}).Error("Failed to record notification")
	}
}
