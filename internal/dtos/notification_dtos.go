package dtos

import "github.com/Patator33/Gestion-locative/shared/go-models"

// UpdateSettingsRequest is a partial update; nil fields are left alone.
// An empty smtp_password keeps the stored one.
type UpdateSettingsRequest struct {
	LatePayment       *bool   `json:"late_payment"`
	LatePaymentDays   *int    `json:"late_payment_days" validate:"omitempty,min=0,max=365"`
	LeaseEnding       *bool   `json:"lease_ending"`
	LeaseEndingDays   *int    `json:"lease_ending_days" validate:"omitempty,min=0,max=365"`
	VacancyAlert      *bool   `json:"vacancy_alert"`
	VacancyAlertDays  *int    `json:"vacancy_alert_days" validate:"omitempty,min=0,max=365"`
	EmailReminders    *bool   `json:"email_reminders"`
	ReminderFrequency *string `json:"reminder_frequency" validate:"omitempty,oneof=daily weekly monthly"`
	ReminderWeekday   *int    `json:"reminder_weekday" validate:"omitempty,min=0,max=6"`
	SMSReminders      *bool   `json:"sms_reminders"`
	SMTPEmail         *string `json:"smtp_email" validate:"omitempty,email"`
	SMTPPassword      *string `json:"smtp_password"`
	SMTPHost          *string `json:"smtp_host" validate:"omitempty,hostname"`
	SMTPPort          *int    `json:"smtp_port" validate:"omitempty,min=1,max=65535"`
}

type SettingsResponse struct {
	*models.NotificationSettings
	HasSMTPPassword bool `json:"has_smtp_password"`
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type SendRemindersResponse struct {
	Message    string   `json:"message"`
	EmailsSent int      `json:"emails_sent"`
	SMSSent    int      `json:"sms_sent"`
	Errors     []string `json:"errors,omitempty"`
}
