package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/metrics"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

const (
	TriggerScheduled   = "scheduled"
	TriggerInteractive = "interactive"
)

// ReminderService sends rent reminders for unpaid leases, either on the
// cron schedule or on demand from the landlord.
type ReminderService struct {
	store         repositories.Store
	notifications *NotificationService
	delivery      *Delivery
	clock         utils.Clock
	loc           *time.Location
	appName       string
}

func NewReminderService(
	cfg *config.Config,
	store repositories.Store,
	notifications *NotificationService,
	delivery *Delivery,
	clock utils.Clock,
) *ReminderService {
	return &ReminderService{
		store:         store,
		notifications: notifications,
		delivery:      delivery,
		clock:         clock,
		loc:           location(cfg),
		appName:       cfg.AppName,
	}
}

// RunSummary reports one scheduled pass.
type RunSummary struct {
	Owners  int
	Due     int
	Sent    int
	SMSSent int
	Failed  int
}

// IsDue reports whether a landlord's cadence fires on the given day.
func IsDue(s *models.NotificationSettings, today time.Time) bool {
	switch s.ReminderFrequency {
	case models.ReminderDaily:
		return true
	case models.ReminderWeekly:
		return today.Weekday() == s.ReminderWeekday
	case models.ReminderMonthly:
		return today.Day() == 1
	default:
		return false
	}
}

type reminderOutcome struct {
	sent    int
	smsSent int
	failed  int
	errs    []string
}

// RunScheduledReminders walks every landlord with reminders enabled. A
// failing landlord or recipient is logged and skipped.
func (s *ReminderService) RunScheduledReminders(ctx context.Context) (RunSummary, error) {
	start := time.Now()
	defer func() { metrics.ObserveReminderRun(TriggerScheduled, time.Since(start)) }()

	var sum RunSummary
	all, err := s.store.ListReminderSettings(ctx)
	if err != nil {
		return sum, fmt.Errorf("list reminder settings: %w", err)
	}
	today := s.clock.Now().In(s.loc)
	sum.Owners = len(all)

	for _, settings := range all {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if !settings.RemindersEnabled() || !IsDue(settings, today) {
			continue
		}
		sum.Due++
		out, err := s.remindOwner(ctx, settings, today, true)
		sum.Sent += out.sent
		sum.SMSSent += out.smsSent
		sum.Failed += out.failed
		if err != nil {
			utils.Logger.WithError(err).WithField("owner_id", settings.UserID).
				Error("Scheduled reminders failed for landlord")
		}
	}

	utils.Logger.WithFields(logrus.Fields{
		"owners": sum.Owners,
		"due":    sum.Due,
		"sent":   sum.Sent,
		"sms":    sum.SMSSent,
		"failed": sum.Failed,
	}).Info("Scheduled reminder run finished")
	return sum, nil
}

// SendReminders is the on-demand variant. It requires a tested SMTP setup.
func (s *ReminderService) SendReminders(ctx context.Context, ownerID uuid.UUID) (*dtos.SendRemindersResponse, error) {
	start := time.Now()
	defer func() { metrics.ObserveReminderRun(TriggerInteractive, time.Since(start)) }()

	settings, err := s.store.ForOwner(ownerID).Settings().Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil || !settings.SMTPConfigured {
		return nil, internal_utils.ErrSMTPNotConfigured
	}

	out, err := s.remindOwner(ctx, settings, s.clock.Now().In(s.loc), false)
	if err != nil {
		return nil, err
	}
	return &dtos.SendRemindersResponse{
		Message:    fmt.Sprintf("%d rappel(s) envoyé(s)", out.sent),
		EmailsSent: out.sent,
		SMSSent:    out.smsSent,
		Errors:     out.errs,
	}, nil
}

func (s *ReminderService) remindOwner(
	ctx context.Context,
	settings *models.NotificationSettings,
	today time.Time,
	automatic bool,
) (reminderOutcome, error) {
	var out reminderOutcome
	repos := s.store.ForOwner(settings.UserID)

	creds, err := s.notifications.smtpCredentials(settings)
	if err != nil {
		return out, err
	}
	sender, channel, err := s.delivery.emailSender(creds)
	if err != nil {
		return out, err
	}

	landlord, err := s.store.Users().GetByID(ctx, settings.UserID)
	if err != nil {
		return out, err
	}
	fromName, fromEmail := s.appName, s.delivery.FromEmail
	if landlord != nil {
		fromName = landlord.Name
	}
	if creds != nil {
		fromEmail = creds.Username
	}

	month, year := int(today.Month()), today.Year()
	leases, err := unpaidLeases(ctx, repos, month, year)
	if err != nil {
		return out, err
	}
	props, tenants, err := loadPortfolio(ctx, repos)
	if err != nil {
		return out, err
	}

	for _, l := range leases {
		tenant, prop := tenants[l.TenantID], props[l.PropertyID]
		if tenant == nil || prop == nil || tenant.Email == "" {
			continue
		}
		log := utils.Logger.WithFields(logrus.Fields{
			"owner_id": settings.UserID,
			"lease_id": l.ID,
			"channel":  channel,
		})

		email := reminderEmail(tenant, prop, l, month, year, automatic)
		email.FromName, email.FromEmail = fromName, fromEmail
		if err := sender.Send(ctx, email); err != nil {
			log.WithError(err).Warn("Reminder delivery failed")
			metrics.RecordReminder(channel, false)
			out.failed++
			out.errs = append(out.errs, fmt.Sprintf("Échec pour %s", tenant.Email))
			continue
		}
		metrics.RecordReminder(channel, true)
		out.sent++

		if !automatic {
			leaseID := l.ID
			notify(ctx, repos, models.NotificationReminderSent,
				"Rappel envoyé",
				fmt.Sprintf("Rappel de loyer envoyé à %s pour %s", tenant.FullName(), prop.Name),
				&leaseID,
			)
		}

		if settings.SMSReminders && s.delivery.SMS != nil && tenant.Phone != "" {
			body := fmt.Sprintf("Rappel: loyer de %s € pour %s (%s) en attente.",
				formatAmount(l.MonthlyDue()), prop.Name, models.PeriodLabel(year, month))
			if err := s.delivery.SMS.SendSMS(ctx, tenant.Phone, body); err != nil {
				log.WithError(err).Warn("Reminder SMS failed")
				metrics.RecordReminder(ChannelSMS, false)
				continue
			}
			metrics.RecordReminder(ChannelSMS, true)
			out.smsSent++
		}
	}
	return out, nil
}

func reminderEmail(t *models.Tenant, p *models.Property, l *models.Lease, month, year int, automatic bool) Email {
	period := models.PeriodLabel(year, month)
	subject := "Rappel de loyer - " + period
	if automatic {
		subject = "[Rappel Auto] Loyer - " + period
	}
	amount := formatAmount(l.MonthlyDue())
	address := fmt.Sprintf("%s, %s %s", p.Address, p.PostalCode, p.City)

	plain := fmt.Sprintf(
		"Bonjour %s,\n\nNous vous rappelons que le loyer de %s € pour le logement %s (%s) "+
			"concernant la période %s n'a pas encore été réglé.\n\nCordialement.",
		t.FullName(), amount, p.Name, address, period,
	)
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Rappel de loyer</h2>
<p>Bonjour %s,</p>
<p>Nous vous rappelons que le loyer concernant la période <strong>%s</strong> n'a pas encore été réglé.</p>
<ul>
<li>Logement : %s</li>
<li>Adresse : %s</li>
<li>Montant : <strong>%s €</strong></li>
</ul>
<p>Cordialement.</p>
</body></html>`,
		html.EscapeString(t.FullName()),
		html.EscapeString(period),
		html.EscapeString(p.Name),
		html.EscapeString(address),
		amount,
	)
	return Email{
		ToName:    t.FullName(),
		ToEmail:   t.Email,
		Subject:   subject,
		PlainText: plain,
		HTML:      body,
	}
}

// TestSMTP sends a message to the landlord's own mailbox and marks SMTP as
// configured when it goes through.
func (s *ReminderService) TestSMTP(ctx context.Context, ownerID uuid.UUID) error {
	repos := s.store.ForOwner(ownerID)
	settings, err := repos.Settings().Get(ctx)
	if err != nil {
		return err
	}
	if settings == nil {
		return internal_utils.ErrSMTPCredentialsMissing
	}
	creds, err := s.notifications.smtpCredentials(settings)
	if err != nil {
		return err
	}
	if creds == nil {
		return internal_utils.ErrSMTPCredentialsMissing
	}

	email := Email{
		FromName:  s.appName,
		FromEmail: creds.Username,
		ToEmail:   creds.Username,
		Subject:   "Test Gestion Locative - Configuration SMTP",
		PlainText: "Votre configuration SMTP fonctionne. Les rappels de loyer peuvent être envoyés.",
		HTML: "<html><body><h2>Configuration SMTP réussie</h2>" +
			"<p>Votre configuration SMTP fonctionne. Les rappels de loyer peuvent être envoyés.</p></body></html>",
	}
	if err := s.delivery.NewSMTP(*creds).Send(ctx, email); err != nil {
		metrics.RecordReminder(ChannelSMTP, false)
		utils.Logger.WithError(err).WithField("owner_id", ownerID).Warn("SMTP test failed")
		return errors.Join(internal_utils.ErrDeliveryFailed, err)
	}
	metrics.RecordReminder(ChannelSMTP, true)

	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		r := tx.ForOwner(ownerID)
		cur, err := r.Settings().Get(ctx)
		if err != nil {
			return err
		}
		if cur == nil {
			return internal_utils.ErrSMTPCredentialsMissing
		}
		cur.SMTPConfigured = true
		return r.Settings().Upsert(ctx, cur)
	})
}
