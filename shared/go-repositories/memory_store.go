package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

const (
	tableUsers           = "users"
	tableProperties      = "properties"
	tableTenants         = "tenants"
	tableLeases          = "leases"
	tableVacancies       = "vacancies"
	tablePayments        = "payments"
	tableSettings        = "notification_settings"
	tableNotifications   = "notifications"
	tableDocuments       = "documents"
	tableAuditLogs       = "audit_logs"
	tableTeams           = "teams"
	tableTeamMembers     = "team_members"
	tableTeamInvitations = "team_invitations"
	indexID              = "id"
	indexOwner           = "owner"
	indexKey             = "key"
)

// memRow wraps every stored value. OwnerID is the scoping key (user id,
// or team id for memberships and invitations) and Key an optional
// secondary lookup (email, token, member user id).
type memRow struct {
	ID      string
	OwnerID string
	Key     string
	Value   any
}

func memSchema() *memdb.DBSchema {
	tables := []string{
		tableUsers, tableProperties, tableTenants, tableLeases, tableVacancies,
		tablePayments, tableSettings, tableNotifications, tableDocuments,
		tableAuditLogs, tableTeams, tableTeamMembers, tableTeamInvitations,
	}
	schema := &memdb.DBSchema{Tables: map[string]*memdb.TableSchema{}}
	for _, name := range tables {
		schema.Tables[name] = &memdb.TableSchema{
			Name: name,
			Indexes: map[string]*memdb.IndexSchema{
				indexID: {
					Name:    indexID,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				indexOwner: {
					Name:         indexOwner,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "OwnerID"},
				},
				indexKey: {
					Name:         indexKey,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Key", Lowercase: true},
				},
			},
		}
	}
	return schema
}

// MemoryStore is a Store on hashicorp/go-memdb. Writes inside WithTx share
// one write transaction that is committed or aborted as a whole.
type MemoryStore struct {
	db  *memdb.MemDB
	txn *memdb.Txn
}

func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, err
	}
	return &MemoryStore{db: db}, nil
}

func (s *MemoryStore) read(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

func (s *MemoryStore) write(fn func(txn *memdb.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	txn := s.db.Txn(true)
	if err := fn(txn); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) ForOwner(ownerID uuid.UUID) OwnerStore {
	return &memOwnerStore{s: s, owner: ownerID}
}

func (s *MemoryStore) Users() UserRepository { return &memUserRepo{s: s} }
func (s *MemoryStore) Teams() TeamRepository { return &memTeamRepo{s: s} }

func (s *MemoryStore) ListReminderSettings(ctx context.Context) ([]*models.NotificationSettings, error) {
	var out []*models.NotificationSettings
	err := s.read(func(txn *memdb.Txn) error {
		all, err := memAll[models.NotificationSettings](txn, tableSettings, indexID)
		if err != nil {
			return err
		}
		for _, st := range all {
			if st.RemindersEnabled() {
				out = append(out, st)
			}
		}
		return nil
	})
	sortByCreated(out, func(v *models.NotificationSettings) time.Time { return v.CreatedAt })
	return out, err
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.txn != nil {
		return fn(s)
	}
	txn := s.db.Txn(true)
	if err := fn(&MemoryStore{db: s.db, txn: txn}); err != nil {
		txn.Abort()
		return err
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close() {}

type memOwnerStore struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (o *memOwnerStore) OwnerID() uuid.UUID { return o.owner }
func (o *memOwnerStore) Properties() PropertyRepository { return &memPropertyRepo{o.s, o.owner} }
func (o *memOwnerStore) Tenants() TenantRepository { return &memTenantRepo{o.s, o.owner} }
func (o *memOwnerStore) Leases() LeaseRepository { return &memLeaseRepo{o.s, o.owner} }
func (o *memOwnerStore) Vacancies() VacancyRepository { return &memVacancyRepo{o.s, o.owner} }
func (o *memOwnerStore) Payments() PaymentRepository { return &memPaymentRepo{o.s, o.owner} }
func (o *memOwnerStore) Settings() SettingsRepository { return &memSettingsRepo{o.s, o.owner} }
func (o *memOwnerStore) Notifications() NotificationRepository {
	return &memNotificationRepo{o.s, o.owner}
}
func (o *memOwnerStore) Documents() DocumentRepository { return &memDocumentRepo{o.s, o.owner} }
func (o *memOwnerStore) AuditLogs() AuditLogRepository { return &memAuditLogRepo{o.s, o.owner} }

/* ------------------------------------------------------------------
   generic row helpers
------------------------------------------------------------------ */

// memPut stores a copy of v so callers cannot mutate stored state.
func memPut[T any](txn *memdb.Txn, table string, id uuid.UUID, owner, key string, v *T) error {
	c := *v
	return txn.Insert(table, &memRow{ID: id.String(), OwnerID: owner, Key: key, Value: &c})
}

// memGet returns a copy of the row with id, or nil when it is missing or
// belongs to another owner. An empty owner skips the check.
func memGet[T any](txn *memdb.Txn, table string, id uuid.UUID, owner string) (*T, error) {
	raw, err := txn.First(table, indexID, id.String())
	if err != nil || raw == nil {
		return nil, err
	}
	row := raw.(*memRow)
	if owner != "" && row.OwnerID != owner {
		return nil, nil
	}
	c := *(row.Value.(*T))
	return &c, nil
}

func memFirst[T any](txn *memdb.Txn, table, index string, args ...any) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil || raw == nil {
		return nil, err
	}
	c := *(raw.(*memRow).Value.(*T))
	return &c, nil
}

func memAll[T any](txn *memdb.Txn, table, index string, args ...any) ([]*T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	var out []*T
	for obj := it.Next(); obj != nil; obj = it.Next() {
		c := *(obj.(*memRow).Value.(*T))
		out = append(out, &c)
	}
	return out, nil
}

func memDelete(txn *memdb.Txn, table string, id uuid.UUID, owner string) error {
	raw, err := txn.First(table, indexID, id.String())
	if err != nil {
		return err
	}
	if raw == nil || (owner != "" && raw.(*memRow).OwnerID != owner) {
		return ErrNotFound
	}
	return txn.Delete(table, raw)
}

func sortByCreated[T any](items []*T, at func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).Before(at(items[j])) })
}

func sortByCreatedDesc[T any](items []*T, at func(*T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
}
