// Package server assembles services, controllers and routes into the HTTP
// handler served by the binary.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/Patator33/Gestion-locative/internal/app"
	"github.com/Patator33/Gestion-locative/internal/controllers"
	"github.com/Patator33/Gestion-locative/internal/metrics"
	"github.com/Patator33/Gestion-locative/internal/routes"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// Deps are the collaborators that differ between production and tests.
type Deps struct {
	Clock       utils.Clock
	Delivery    *services.Delivery
	Blobs       services.BlobStore
	AuthLimiter *middleware.RateLimiter
}

// Server exposes the handler plus the services the scheduler needs.
type Server struct {
	Handler   http.Handler
	Reminders *services.ReminderService
}

func New(application *app.App, deps Deps) *Server {
	cfg := application.Config
	store := application.Store

	if deps.Clock == nil {
		deps.Clock = utils.RealClock()
	}
	if deps.AuthLimiter == nil {
		deps.AuthLimiter = middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst)
	}

	// Services
	auditService := services.NewAuditService(store)
	authService := services.NewAuthService(cfg, store)
	propertyService := services.NewPropertyService(store, auditService)
	tenantService := services.NewTenantService(store, auditService)
	leaseService := services.NewLeaseService(cfg, store, auditService)
	vacancyService := services.NewVacancyService(store, auditService)
	paymentService := services.NewPaymentService(cfg, store, auditService, deps.Clock)
	dashboardService := services.NewDashboardService(cfg, store, deps.Clock)
	calendarService := services.NewCalendarService(cfg, store, deps.Clock)
	notificationService := services.NewNotificationService(cfg, store)
	reminderService := services.NewReminderService(cfg, store, notificationService, deps.Delivery, deps.Clock)
	documentService := services.NewDocumentService(cfg, store, deps.Blobs, auditService)
	teamService := services.NewTeamService(store, auditService, deps.Clock)

	// Controllers
	healthController := controllers.NewHealthController(application)
	authController := controllers.NewAuthController(authService)
	portfolioController := controllers.NewPortfolioController(propertyService, tenantService)
	leaseController := controllers.NewLeaseController(leaseService, vacancyService)
	paymentController := controllers.NewPaymentController(paymentService)
	dashboardController := controllers.NewDashboardController(dashboardService, calendarService)
	notificationController := controllers.NewNotificationController(notificationService, reminderService)
	documentController := controllers.NewDocumentController(documentService)
	teamController := controllers.NewTeamController(teamService)
	auditController := controllers.NewAuditController(auditService)

	// Router
	router := mux.NewRouter()
	router.Use(metrics.InstrumentHandler)

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.APIRoot, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.Handle(routes.Metrics, metrics.Handler()).Methods(http.MethodGet)

	// Public auth, rate limited per client IP
	router.Handle(routes.AuthRegister, deps.AuthLimiter.Handler(http.HandlerFunc(authController.RegisterHandler))).Methods(http.MethodPost)
	router.Handle(routes.AuthLogin, deps.AuthLimiter.Handler(http.HandlerFunc(authController.LoginHandler))).Methods(http.MethodPost)

	// Protected routes (JWT middleware)
	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))

	secured.HandleFunc(routes.AuthMe, authController.MeHandler).Methods(http.MethodGet)

	// Portfolio
	secured.HandleFunc(routes.Properties, portfolioController.CreatePropertyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Properties, portfolioController.ListPropertiesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Property, portfolioController.GetPropertyHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Property, portfolioController.UpdatePropertyHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Property, portfolioController.DeletePropertyHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.Tenants, portfolioController.CreateTenantHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Tenants, portfolioController.ListTenantsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Tenant, portfolioController.GetTenantHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Tenant, portfolioController.UpdateTenantHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Tenant, portfolioController.DeleteTenantHandler).Methods(http.MethodDelete)

	// Occupancy
	secured.HandleFunc(routes.Leases, leaseController.CreateLeaseHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Leases, leaseController.ListLeasesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Lease, leaseController.GetLeaseHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseTerminate, leaseController.TerminateLeaseHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Vacancies, leaseController.CreateVacancyHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Vacancies, leaseController.ListVacanciesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.VacancyEnd, leaseController.EndVacancyHandler).Methods(http.MethodPut)

	// Ledger
	secured.HandleFunc(routes.Payments, paymentController.CreatePaymentHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Payments, paymentController.ListPaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeasePayments, paymentController.ListLeasePaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Payment, paymentController.DeletePaymentHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.Receipt, paymentController.ReceiptHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ExportPayments, paymentController.ExportPaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.ExportPaymentsCSV, paymentController.ExportPaymentsCSVHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.RemindersPending, paymentController.PendingPaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.DashboardStats, dashboardController.StatsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.CalendarEvents, dashboardController.CalendarHandler).Methods(http.MethodGet)

	// Reminders and notifications
	secured.HandleFunc(routes.RemindersTestSMTP, notificationController.TestSMTPHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.RemindersSend, notificationController.SendRemindersHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.NotificationSettings, notificationController.GetSettingsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationSettings, notificationController.UpdateSettingsHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.NotificationsReadAll, notificationController.MarkAllReadHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Notifications, notificationController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.NotificationRead, notificationController.MarkReadHandler).Methods(http.MethodPut)

	// Documents, upload before {id}
	secured.HandleFunc(routes.DocumentUpload, documentController.UploadHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Documents, documentController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.DocumentDownload, documentController.DownloadHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Document, documentController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Document, documentController.DeleteHandler).Methods(http.MethodDelete)

	// Teams, invitation accept before {id}
	secured.HandleFunc(routes.InvitationAccept, teamController.AcceptInvitationHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Teams, teamController.CreateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.Teams, teamController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Team, teamController.GetHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.Team, teamController.UpdateHandler).Methods(http.MethodPut)
	secured.HandleFunc(routes.Team, teamController.DeleteHandler).Methods(http.MethodDelete)
	secured.HandleFunc(routes.TeamInvite, teamController.InviteHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.TeamInvitations, teamController.InvitationsHandler).Methods(http.MethodGet)

	// Audit
	secured.HandleFunc(routes.AuditLogs, auditController.ListHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AuditLogEntity, auditController.EntityHandler).Methods(http.MethodGet)

	return &Server{
		Handler:   router,
		Reminders: reminderService,
	}
}
