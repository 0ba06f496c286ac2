package routes

const (
	// Health
	Health  = "/health"
	APIRoot = "/api/"
	Metrics = "/metrics"

	// Auth
	AuthRegister = "/api/auth/register"
	AuthLogin    = "/api/auth/login"
	AuthMe       = "/api/auth/me"

	// Portfolio
	Properties = "/api/properties"
	Property   = "/api/properties/{id}"
	Tenants    = "/api/tenants"
	Tenant     = "/api/tenants/{id}"

	// Occupancy
	Leases         = "/api/leases"
	Lease          = "/api/leases/{id}"
	LeaseTerminate = "/api/leases/{id}/terminate"
	Vacancies      = "/api/vacancies"
	VacancyEnd     = "/api/vacancies/{id}/end"

	// Ledger
	Payments          = "/api/payments"
	Payment           = "/api/payments/{id}"
	LeasePayments     = "/api/payments/lease/{lease_id}"
	Receipt           = "/api/receipts/{payment_id}"
	ExportPayments    = "/api/export/payments"
	ExportPaymentsCSV = "/api/export/payments/csv"
	DashboardStats    = "/api/dashboard/stats"
	CalendarEvents    = "/api/calendar/events"
	RemindersPending  = "/api/reminders/pending"
	RemindersSend     = "/api/reminders/send"
	RemindersTestSMTP = "/api/reminders/test-smtp"

	// Notifications
	Notifications        = "/api/notifications"
	NotificationSettings = "/api/notifications/settings"
	NotificationRead     = "/api/notifications/{id}/read"
	NotificationsReadAll = "/api/notifications/read-all"

	// Documents
	Documents        = "/api/documents"
	DocumentUpload   = "/api/documents/upload"
	Document         = "/api/documents/{id}"
	DocumentDownload = "/api/documents/{id}/download"

	// Teams
	Teams            = "/api/teams"
	Team             = "/api/teams/{id}"
	TeamInvite       = "/api/teams/{id}/invite"
	TeamInvitations  = "/api/teams/{id}/invitations"
	InvitationAccept = "/api/teams/invitations/{token}/accept"

	// Audit
	AuditLogs      = "/api/audit-logs"
	AuditLogEntity = "/api/audit-logs/entity/{type}/{id}"
)
