package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

// Store is the root of the storage layer. Owned records are only reachable
// through ForOwner, whose repositories are bound to one landlord.
type Store interface {
	ForOwner(ownerID uuid.UUID) OwnerStore

	Users() UserRepository
	Teams() TeamRepository

	// ListReminderSettings returns every settings row with email reminders
	// enabled and SMTP configured, across all owners.
	ListReminderSettings(ctx context.Context) ([]*models.NotificationSettings, error)

	// WithTx runs fn in one transaction. Any error rolls back every write
	// made through tx.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close()
}

// OwnerStore exposes repositories scoped to a single owner. Records of
// other owners are invisible through it.
type OwnerStore interface {
	OwnerID() uuid.UUID

	Properties() PropertyRepository
	Tenants() TenantRepository
	Leases() LeaseRepository
	Vacancies() VacancyRepository
	Payments() PaymentRepository
	Settings() SettingsRepository
	Notifications() NotificationRepository
	Documents() DocumentRepository
	AuditLogs() AuditLogRepository
}
