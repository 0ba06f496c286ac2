package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

// PGStore is the Postgres-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
	db   DB
	inTx bool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, db: pool}
}

func (s *PGStore) ForOwner(ownerID uuid.UUID) OwnerStore {
	return &pgOwnerStore{db: s.db, owner: ownerID}
}

func (s *PGStore) Users() UserRepository { return newUserRepository(s.db) }
func (s *PGStore) Teams() TeamRepository { return newTeamRepository(s.db) }

func (s *PGStore) ListReminderSettings(ctx context.Context) ([]*models.NotificationSettings, error) {
	return listReminderSettings(ctx, s.db)
}

// WithTx opens a transaction with BeginFunc, which commits when fn returns
// nil and rolls back otherwise. Nested calls join the outer transaction.
func (s *PGStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		return fn(&PGStore{pool: s.pool, db: tx, inTx: true})
	})
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PGStore) Close() {
	if !s.inTx {
		s.pool.Close()
	}
}

type pgOwnerStore struct {
	db    DB
	owner uuid.UUID
}

func (o *pgOwnerStore) OwnerID() uuid.UUID { return o.owner }
func (o *pgOwnerStore) Properties() PropertyRepository { return newPropertyRepository(o.db, o.owner) }
func (o *pgOwnerStore) Tenants() TenantRepository { return newTenantRepository(o.db, o.owner) }
func (o *pgOwnerStore) Leases() LeaseRepository { return newLeaseRepository(o.db, o.owner) }
func (o *pgOwnerStore) Vacancies() VacancyRepository { return newVacancyRepository(o.db, o.owner) }
func (o *pgOwnerStore) Payments() PaymentRepository { return newPaymentRepository(o.db, o.owner) }
func (o *pgOwnerStore) Settings() SettingsRepository { return newSettingsRepository(o.db, o.owner) }
func (o *pgOwnerStore) Notifications() NotificationRepository { return newNotificationRepository(o.db, o.owner) }
func (o *pgOwnerStore) Documents() DocumentRepository { return newDocumentRepository(o.db, o.owner) }
func (o *pgOwnerStore) AuditLogs() AuditLogRepository { return newAuditLogRepository(o.db, o.owner) }
