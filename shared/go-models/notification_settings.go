package models

import (
	"time"

	"github.com/google/uuid"
)

type ReminderFrequency string

const (
	ReminderDaily   ReminderFrequency = "daily"
	ReminderWeekly  ReminderFrequency = "weekly"
	ReminderMonthly ReminderFrequency = "monthly"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// NotificationSettings holds one landlord's alert and reminder preferences.
// SMTPPasswordEnc is the AES-GCM encrypted SMTP password and never leaves
// the service layer.
type NotificationSettings struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	LatePayment       bool              `json:"late_payment"`
	LatePaymentDays   int               `json:"late_payment_days"`
	LeaseEnding       bool              `json:"lease_ending"`
	LeaseEndingDays   int               `json:"lease_ending_days"`
	VacancyAlert      bool              `json:"vacancy_alert"`
	VacancyAlertDays  int               `json:"vacancy_alert_days"`
	EmailReminders    bool              `json:"email_reminders"`
	ReminderFrequency ReminderFrequency `json:"reminder_frequency"`
	ReminderWeekday   time.Weekday      `json:"reminder_weekday"`
	SMSReminders      bool              `json:"sms_reminders"`
	SMTPEmail         *string           `json:"smtp_email"`
	SMTPPasswordEnc   *string           `json:"-"`
	SMTPHost          string            `json:"smtp_host"`
	SMTPPort          int               `json:"smtp_port"`
	SMTPConfigured    bool              `json:"smtp_configured"`
	CreatedAt         time.Time         `json:"created_at"`
}

// DefaultNotificationSettings returns the settings a new landlord starts with.
func DefaultNotificationSettings(userID uuid.UUID) *NotificationSettings {
	return &NotificationSettings{
		ID:                uuid.New(),
		UserID:            userID,
		LatePayment:       true,
		LatePaymentDays:   5,
		LeaseEnding:       true,
		LeaseEndingDays:   60,
		VacancyAlert:      true,
		VacancyAlertDays:  30,
		ReminderFrequency: ReminderWeekly,
		ReminderWeekday:   time.Monday,
		SMTPHost:          DefaultSMTPHost,
		SMTPPort:          DefaultSMTPPort,
		CreatedAt:         time.Now().UTC(),
	}
}

// RemindersEnabled reports whether the scheduler should consider this user.
func (s *NotificationSettings) RemindersEnabled() bool {
	return s.EmailReminders && s.SMTPConfigured
}
