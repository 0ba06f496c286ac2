package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type SettingsRepository interface {
	// Get returns nil when the owner has no settings yet.
	Get(ctx context.Context) (*models.NotificationSettings, error)
	Upsert(ctx context.Context, s *models.NotificationSettings) error
}

type settingsRepo struct {
	db    DB
	owner uuid.UUID
}

func newSettingsRepository(db DB, owner uuid.UUID) SettingsRepository {
	return &settingsRepo{db: db, owner: owner}
}

func (r *settingsRepo) Get(ctx context.Context) (*models.NotificationSettings, error) {
	row := r.db.QueryRow(ctx, baseSelectSettings()+" WHERE user_id=$1", r.owner)
	return noRows(scanSettings(row))
}

func (r *settingsRepo) Upsert(ctx context.Context, s *models.NotificationSettings) error {
	s.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO notification_settings (
            id, user_id, late_payment, late_payment_days, lease_ending, lease_ending_days,
            vacancy_alert, vacancy_alert_days, email_reminders, reminder_frequency,
            reminder_weekday, sms_reminders, smtp_email, smtp_password_enc, smtp_host,
            smtp_port, smtp_configured, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        ON CONFLICT (user_id) DO UPDATE SET
            late_payment=EXCLUDED.late_payment,
            late_payment_days=EXCLUDED.late_payment_days,
            lease_ending=EXCLUDED.lease_ending,
            lease_ending_days=EXCLUDED.lease_ending_days,
            vacancy_alert=EXCLUDED.vacancy_alert,
            vacancy_alert_days=EXCLUDED.vacancy_alert_days,
            email_reminders=EXCLUDED.email_reminders,
            reminder_frequency=EXCLUDED.reminder_frequency,
            reminder_weekday=EXCLUDED.reminder_weekday,
            sms_reminders=EXCLUDED.sms_reminders,
            smtp_email=EXCLUDED.smtp_email,
            smtp_password_enc=EXCLUDED.smtp_password_enc,
            smtp_host=EXCLUDED.smtp_host,
            smtp_port=EXCLUDED.smtp_port,
            smtp_configured=EXCLUDED.smtp_configured
    `,
		s.ID, s.UserID, s.LatePayment, s.LatePaymentDays, s.LeaseEnding, s.LeaseEndingDays,
		s.VacancyAlert, s.VacancyAlertDays, s.EmailReminders, string(s.ReminderFrequency),
		int(s.ReminderWeekday), s.SMSReminders, s.SMTPEmail, s.SMTPPasswordEnc, s.SMTPHost,
		s.SMTPPort, s.SMTPConfigured, s.CreatedAt,
	)
	return err
}

func listReminderSettings(ctx context.Context, db DB) ([]*models.NotificationSettings, error) {
	rows, err := db.Query(ctx,
		baseSelectSettings()+" WHERE email_reminders AND smtp_configured ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSettings)
}

func baseSelectSettings() string {
	return `
        SELECT
            id, user_id, late_payment, late_payment_days, lease_ending, lease_ending_days,
            vacancy_alert, vacancy_alert_days, email_reminders, reminder_frequency,
            reminder_weekday, sms_reminders, smtp_email, smtp_password_enc, smtp_host,
            smtp_port, smtp_configured, created_at
        FROM notification_settings
    `
}

func scanSettings(row pgx.Row) (*models.NotificationSettings, error) {
	var (
		s       models.NotificationSettings
		freq    string
		weekday int
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.LatePayment,
		&s.LatePaymentDays,
		&s.LeaseEnding,
		&s.LeaseEndingDays,
		&s.VacancyAlert,
		&s.VacancyAlertDays,
		&s.EmailReminders,
		&freq,
		&weekday,
		&s.SMSReminders,
		&s.SMTPEmail,
		&s.SMTPPasswordEnc,
		&s.SMTPHost,
		&s.SMTPPort,
		&s.SMTPConfigured,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ReminderFrequency = models.ReminderFrequency(freq)
	s.ReminderWeekday = time.Weekday(weekday)
	return &s, nil
}
