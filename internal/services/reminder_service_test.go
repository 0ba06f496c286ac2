package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func TestIsDue(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	first := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		freq     models.ReminderFrequency
		weekday  time.Weekday
		today    time.Time
		expected bool
	}{
		{"daily fires every day", models.ReminderDaily, time.Monday, first, true},
		{"weekly fires on its weekday", models.ReminderWeekly, time.Monday, monday, true},
		{"weekly skips other days", models.ReminderWeekly, time.Friday, monday, false},
		{"monthly fires on the first", models.ReminderMonthly, time.Monday, first, true},
		{"monthly skips other days", models.ReminderMonthly, time.Monday, monday, false},
		{"unknown never fires", models.ReminderFrequency("hourly"), time.Monday, monday, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &models.NotificationSettings{ReminderFrequency: tt.freq, ReminderWeekday: tt.weekday}
			assert.Equal(t, tt.expected, IsDue(s, tt.today))
		})
	}
}

// configureSMTP stores credentials for owner and runs the SMTP test.
func configureSMTP(t *testing.T, f *fixture, r *ReminderService, owner uuid.UUID, freq string) {
	t.Helper()
	_, err := f.notifications.UpdateSettings(f.ctx, owner, dtos.UpdateSettingsRequest{
		EmailReminders:    utils.Ptr(true),
		ReminderFrequency: utils.Ptr(freq),
		SMTPEmail:         utils.Ptr("landlord@example.com"),
		SMTPPassword:      utils.Ptr("app-password"),
	})
	require.NoError(t, err)
	require.NoError(t, r.TestSMTP(f.ctx, owner))
}

func TestTestSMTP(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{}
	delivery, used := fakeDelivery(mailer)
	r := NewReminderService(f.cfg, f.store, f.notifications, delivery, f.clock)

	t.Run("missing credentials", func(t *testing.T) {
		err := r.TestSMTP(f.ctx, f.owner)
		assert.ErrorIs(t, err, internal_utils.ErrSMTPCredentialsMissing)
	})

	t.Run("delivery failure keeps smtp unconfigured", func(t *testing.T) {
		_, err := f.notifications.UpdateSettings(f.ctx, f.owner, dtos.UpdateSettingsRequest{
			SMTPEmail:    utils.Ptr("landlord@example.com"),
			SMTPPassword: utils.Ptr("app-password"),
		})
		require.NoError(t, err)

		mailer.err = errBoom
		err = r.TestSMTP(f.ctx, f.owner)
		mailer.err = nil
		assert.ErrorIs(t, err, internal_utils.ErrDeliveryFailed)

		got, err := f.notifications.GetSettings(f.ctx, f.owner)
		require.NoError(t, err)
		assert.False(t, got.SMTPConfigured)
		assert.True(t, got.HasSMTPPassword)
	})

	t.Run("success marks smtp configured", func(t *testing.T) {
		require.NoError(t, r.TestSMTP(f.ctx, f.owner))

		got, err := f.notifications.GetSettings(f.ctx, f.owner)
		require.NoError(t, err)
		assert.True(t, got.SMTPConfigured)

		require.NotEmpty(t, *used)
		last := (*used)[len(*used)-1]
		assert.Equal(t, "app-password", last.Password)
		assert.Equal(t, models.DefaultSMTPHost, last.Host)
		assert.Equal(t, models.DefaultSMTPPort, last.Port)
		assert.Equal(t, []string{"landlord@example.com"}, mailer.recipients())
	})

	t.Run("changing credentials requires a new test", func(t *testing.T) {
		got, err := f.notifications.UpdateSettings(f.ctx, f.owner, dtos.UpdateSettingsRequest{
			SMTPHost: utils.Ptr("smtp.example.com"),
		})
		require.NoError(t, err)
		assert.False(t, got.SMTPConfigured)
	})
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{failTo: map[string]bool{"broken@example.com": true}}
	delivery, _ := fakeDelivery(mailer)
	r := NewReminderService(f.cfg, f.store, f.notifications, delivery, f.clock)

	_, err := r.SendReminders(f.ctx, f.owner)
	require.ErrorIs(t, err, internal_utils.ErrSMTPNotConfigured)

	configureSMTP(t, f, r, f.owner, "weekly")
	mailer.sent = nil

	ok := f.lease(t, f.property(t, "A", 500, 20), f.tenant(t, "Ana", "Lopez", "ana@example.com"), "2025-01-01")
	f.lease(t, f.property(t, "B", 600, 0), f.tenant(t, "Bob", "Noemail", ""), "2025-01-01")
	f.lease(t, f.property(t, "C", 700, 0), f.tenant(t, "Carl", "Broken", "broken@example.com"), "2025-01-01")
	paid := f.lease(t, f.property(t, "D", 800, 0), f.tenant(t, "Dora", "Paid", "dora@example.com"), "2025-01-01")
	f.pay(t, paid, 800, "2025-03-01", 3, 2025)

	resp, err := r.SendReminders(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.EmailsSent)
	assert.Equal(t, "1 rappel(s) envoyé(s)", resp.Message)
	assert.Equal(t, []string{"Échec pour broken@example.com"}, resp.Errors)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "ana@example.com", sent.ToEmail)
	assert.Equal(t, "Rappel de loyer - Mars 2025", sent.Subject)
	assert.Equal(t, "landlord@example.com", sent.FromEmail)
	assert.Equal(t, "Marie Bailleur", sent.FromName)
	assert.Contains(t, sent.HTML, "520.00 €")
	assert.Contains(t, sent.HTML, "12 rue des Lilas, 69003 Lyon")

	notes, err := f.notifications.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationReminderSent, notes[0].Type)
	assert.Equal(t, "Rappel de loyer envoyé à Ana Lopez pour A", notes[0].Message)
	require.NotNil(t, notes[0].RelatedID)
	assert.Equal(t, ok.ID, *notes[0].RelatedID)
}

func TestRunScheduledReminders(t *testing.T) {
	f := newFixture(t)
	mailer := &fakeMailer{failTo: map[string]bool{"broken@example.com": true}}
	sms := &fakeSMS{}
	delivery, _ := fakeDelivery(mailer)
	delivery.SMS = sms
	r := NewReminderService(f.cfg, f.store, f.notifications, delivery, f.clock)

	// The fixture owner is weekly on Monday with SMS on; the clock is a Monday.
	configureSMTP(t, f, r, f.owner, "weekly")
	_, err := f.notifications.UpdateSettings(f.ctx, f.owner, dtos.UpdateSettingsRequest{SMSReminders: utils.Ptr(true)})
	require.NoError(t, err)
	f.lease(t, f.property(t, "A", 500, 0), f.tenant(t, "Carl", "Broken", "broken@example.com"), "2025-01-01")
	f.lease(t, f.property(t, "B", 500, 0), f.tenant(t, "Ana", "Lopez", "ana@example.com"), "2025-01-01")

	// A second landlord on a monthly cadence is not due on the 10th.
	monthly := uuid.New()
	configureSMTP(t, f, r, monthly, "monthly")
	p, err := f.properties.CreateProperty(f.ctx, monthly, dtos.PropertyRequest{
		Name: "M", Address: "1 rue", City: "Nice", PostalCode: "06000", PropertyType: "maison", RentAmount: 1000,
	})
	require.NoError(t, err)
	tn, err := f.tenants.CreateTenant(f.ctx, monthly, dtos.TenantRequest{FirstName: "Max", LastName: "Monthly", Email: "max@example.com"})
	require.NoError(t, err)
	_, err = f.leases.CreateLease(f.ctx, monthly, dtos.CreateLeaseRequest{PropertyID: p.ID, TenantID: tn.ID, StartDate: "2025-01-01"})
	require.NoError(t, err)

	mailer.sent = nil
	sum, err := r.RunScheduledReminders(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Owners)
	assert.Equal(t, 1, sum.Due)
	assert.Equal(t, 1, sum.Sent)
	assert.Equal(t, 1, sum.Failed, "a failing recipient does not stop the run")
	assert.Equal(t, 1, sum.SMSSent)
	assert.Equal(t, []string{"ana@example.com"}, mailer.recipients())
	assert.Equal(t, "[Rappel Auto] Loyer - Mars 2025", mailer.sent[0].Subject)
	assert.Len(t, sms.sent, 1)

	notes, err := f.notifications.List(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Empty(t, notes, "scheduled runs do not fill the inbox")

	t.Run("first of the month fires the monthly landlord", func(t *testing.T) {
		f.clock.Set(time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC))
		mailer.sent = nil
		sum, err := r.RunScheduledReminders(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Due)
		assert.Equal(t, []string{"max@example.com"}, mailer.recipients())
	})
}

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	repos := f.store.ForOwner(f.owner)
	notify(f.ctx, repos, models.NotificationLatePayment, "Retard", "Loyer en retard", nil)
	notify(f.ctx, repos, models.NotificationVacancy, "Vacance", "Bien vacant", nil)

	list, err := f.notifications.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, f.notifications.MarkRead(f.ctx, f.owner, list[0].ID))
	assert.ErrorIs(t, f.notifications.MarkRead(f.ctx, f.owner, uuid.New()), internal_utils.ErrNotFound)
	assert.ErrorIs(t, f.notifications.MarkRead(f.ctx, uuid.New(), list[1].ID), internal_utils.ErrNotFound)

	unread, err := repos.Notifications().CountUnread(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	resp, err := f.notifications.MarkAllRead(f.ctx, f.owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Updated)

	st, err := f.dashboard.Stats(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Zero(t, st.UnreadNotifications)
}

func TestSettingsDefaults(t *testing.T) {
	f := newFixture(t)
	got, err := f.notifications.GetSettings(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderWeekly, got.ReminderFrequency)
	assert.Equal(t, time.Monday, got.ReminderWeekday)
	assert.False(t, got.HasSMTPPassword)

	again, err := f.notifications.GetSettings(f.ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID, "defaults are created once")
}
