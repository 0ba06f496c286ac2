package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

/* ------------------------------------------------------------------
   properties
------------------------------------------------------------------ */

type memPropertyRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memPropertyRepo) Create(ctx context.Context, p *models.Property) error {
	p.UserID = r.owner
	p.RowVersion = 1
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableProperties, p.ID, r.owner.String(), "", p)
	})
}

func (r *memPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Property, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Property](txn, tableProperties, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memPropertyRepo) List(ctx context.Context) (out []*models.Property, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Property](txn, tableProperties, indexOwner, r.owner.String())
		return err
	})
	sortByCreated(out, func(p *models.Property) time.Time { return p.CreatedAt })
	return out, err
}

// mutate loads the owned property, applies fn and stores the result.
func (r *memPropertyRepo) mutate(id uuid.UUID, missing error, fn func(*models.Property) error) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Property](txn, tableProperties, id, r.owner.String())
		if err != nil {
			return err
		}
		if cur == nil {
			return missing
		}
		if err := fn(cur); err != nil {
			return err
		}
		return memPut(txn, tableProperties, cur.ID, r.owner.String(), "", cur)
	})
}

func (r *memPropertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) error {
	return r.mutate(p.ID, ErrRowVersionConflict, func(cur *models.Property) error {
		if cur.RowVersion != expected {
			return ErrRowVersionConflict
		}
		occupied, tenant := cur.IsOccupied, cur.CurrentTenantID
		*cur = *p
		cur.UserID = r.owner
		cur.IsOccupied, cur.CurrentTenantID = occupied, tenant
		cur.RowVersion = expected + 1
		return nil
	})
}

func (r *memPropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *memPropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		return memDelete(txn, tableProperties, id, r.owner.String())
	})
}

func (r *memPropertyRepo) MarkOccupied(ctx context.Context, id, tenantID uuid.UUID, onlyIfVacant bool) error {
	missing := ErrNotFound
	if onlyIfVacant {
		missing = ErrConditionFailed
	}
	return r.mutate(id, missing, func(cur *models.Property) error {
		if onlyIfVacant && cur.IsOccupied {
			return ErrConditionFailed
		}
		tid := tenantID
		cur.IsOccupied = true
		cur.CurrentTenantID = &tid
		return nil
	})
}

func (r *memPropertyRepo) MarkVacant(ctx context.Context, id uuid.UUID) error {
	return r.mutate(id, ErrNotFound, func(cur *models.Property) error {
		cur.IsOccupied = false
		cur.CurrentTenantID = nil
		return nil
	})
}

/* ------------------------------------------------------------------
   tenants
------------------------------------------------------------------ */

type memTenantRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memTenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	t.UserID = r.owner
	t.RowVersion = 1
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableTenants, t.ID, r.owner.String(), "", t)
	})
}

func (r *memTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Tenant, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Tenant](txn, tableTenants, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memTenantRepo) List(ctx context.Context) (out []*models.Tenant, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Tenant](txn, tableTenants, indexOwner, r.owner.String())
		return err
	})
	sortByCreated(out, func(t *models.Tenant) time.Time { return t.CreatedAt })
	return out, err
}

func (r *memTenantRepo) mutate(id uuid.UUID, missing error, fn func(*models.Tenant) error) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Tenant](txn, tableTenants, id, r.owner.String())
		if err != nil {
			return err
		}
		if cur == nil {
			return missing
		}
		if err := fn(cur); err != nil {
			return err
		}
		return memPut(txn, tableTenants, cur.ID, r.owner.String(), "", cur)
	})
}

func (r *memTenantRepo) UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) error {
	return r.mutate(t.ID, ErrRowVersionConflict, func(cur *models.Tenant) error {
		if cur.RowVersion != expected {
			return ErrRowVersionConflict
		}
		home := cur.CurrentPropertyID
		*cur = *t
		cur.UserID = r.owner
		cur.CurrentPropertyID = home
		cur.RowVersion = expected + 1
		return nil
	})
}

func (r *memTenantRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *memTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		return memDelete(txn, tableTenants, id, r.owner.String())
	})
}

func (r *memTenantRepo) SetCurrentProperty(ctx context.Context, id uuid.UUID, propertyID *uuid.UUID) error {
	return r.mutate(id, ErrNotFound, func(cur *models.Tenant) error {
		cur.CurrentPropertyID = propertyID
		return nil
	})
}

/* ------------------------------------------------------------------
   leases
------------------------------------------------------------------ */

type memLeaseRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memLeaseRepo) Create(ctx context.Context, l *models.Lease) error {
	l.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableLeases, l.ID, r.owner.String(), "", l)
	})
}

func (r *memLeaseRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Lease, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Lease](txn, tableLeases, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memLeaseRepo) List(ctx context.Context) (out []*models.Lease, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Lease](txn, tableLeases, indexOwner, r.owner.String())
		return err
	})
	sortByCreated(out, func(l *models.Lease) time.Time { return l.CreatedAt })
	return out, err
}

func (r *memLeaseRepo) ListActive(ctx context.Context) ([]*models.Lease, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Lease
	for _, l := range all {
		if l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLeaseRepo) Terminate(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Lease](txn, tableLeases, id, r.owner.String())
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		cur.IsActive = false
		cur.EndDate = &endDate
		return memPut(txn, tableLeases, cur.ID, r.owner.String(), "", cur)
	})
}

/* ------------------------------------------------------------------
   vacancies
------------------------------------------------------------------ */

type memVacancyRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memVacancyRepo) Create(ctx context.Context, v *models.Vacancy) error {
	v.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableVacancies, v.ID, r.owner.String(), "", v)
	})
}

func (r *memVacancyRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Vacancy, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Vacancy](txn, tableVacancies, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memVacancyRepo) List(ctx context.Context) (out []*models.Vacancy, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Vacancy](txn, tableVacancies, indexOwner, r.owner.String())
		return err
	})
	sortByCreated(out, func(v *models.Vacancy) time.Time { return v.CreatedAt })
	return out, err
}

func (r *memVacancyRepo) ListActive(ctx context.Context) ([]*models.Vacancy, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Vacancy
	for _, v := range all {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memVacancyRepo) CloseActiveForProperty(ctx context.Context, propertyID uuid.UUID, endDate time.Time) (int64, error) {
	var closed int64
	err := r.s.write(func(txn *memdb.Txn) error {
		all, err := memAll[models.Vacancy](txn, tableVacancies, indexOwner, r.owner.String())
		if err != nil {
			return err
		}
		for _, v := range all {
			if v.PropertyID != propertyID || !v.IsActive {
				continue
			}
			end := endDate
			v.IsActive = false
			v.EndDate = &end
			if err := memPut(txn, tableVacancies, v.ID, r.owner.String(), "", v); err != nil {
				return err
			}
			closed++
		}
		return nil
	})
	return closed, err
}

func (r *memVacancyRepo) End(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Vacancy](txn, tableVacancies, id, r.owner.String())
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		cur.IsActive = false
		cur.EndDate = &endDate
		return memPut(txn, tableVacancies, cur.ID, r.owner.String(), "", cur)
	})
}

/* ------------------------------------------------------------------
   payments
------------------------------------------------------------------ */

type memPaymentRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	p.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tablePayments, p.ID, r.owner.String(), "", p)
	})
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Payment, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Payment](txn, tablePayments, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memPaymentRepo) all() (out []*models.Payment, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Payment](txn, tablePayments, indexOwner, r.owner.String())
		return err
	})
	return out, err
}

func (r *memPaymentRepo) List(ctx context.Context) ([]*models.Payment, error) {
	out, err := r.all()
	sortByCreatedDesc(out, func(p *models.Payment) time.Time { return p.CreatedAt })
	sortByCreatedDesc(out, func(p *models.Payment) time.Time { return p.PaymentDate })
	return out, err
}

func (r *memPaymentRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Payment, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Payment
	for _, p := range all {
		if p.LeaseID == leaseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) ListForPeriod(ctx context.Context, month, year int) ([]*models.Payment, error) {
	all, err := r.all()
	if err != nil {
		return nil, err
	}
	var out []*models.Payment
	for _, p := range all {
		if p.PeriodMonth == month && p.PeriodYear == year {
			out = append(out, p)
		}
	}
	sortByCreated(out, func(p *models.Payment) time.Time { return p.CreatedAt })
	return out, nil
}

func (r *memPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		return memDelete(txn, tablePayments, id, r.owner.String())
	})
}

/* ------------------------------------------------------------------
   notification settings & notifications
------------------------------------------------------------------ */

type memSettingsRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memSettingsRepo) Get(ctx context.Context) (out *models.NotificationSettings, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memFirst[models.NotificationSettings](txn, tableSettings, indexOwner, r.owner.String())
		return err
	})
	return out, err
}

func (r *memSettingsRepo) Upsert(ctx context.Context, st *models.NotificationSettings) error {
	st.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		existing, err := memFirst[models.NotificationSettings](txn, tableSettings, indexOwner, r.owner.String())
		if err != nil {
			return err
		}
		if existing != nil {
			st.ID = existing.ID
			st.CreatedAt = existing.CreatedAt
		}
		return memPut(txn, tableSettings, st.ID, r.owner.String(), "", st)
	})
}

type memNotificationRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableNotifications, n.ID, r.owner.String(), "", n)
	})
}

func (r *memNotificationRepo) all() (out []*models.Notification, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.Notification](txn, tableNotifications, indexOwner, r.owner.String())
		return err
	})
	return out, err
}

func (r *memNotificationRepo) List(ctx context.Context, limit int) ([]*models.Notification, error) {
	out, err := r.all()
	if err != nil {
		return nil, err
	}
	sortByCreatedDesc(out, func(n *models.Notification) time.Time { return n.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Notification](txn, tableNotifications, id, r.owner.String())
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		cur.IsRead = true
		return memPut(txn, tableNotifications, cur.ID, r.owner.String(), "", cur)
	})
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.write(func(txn *memdb.Txn) error {
		all, err := memAll[models.Notification](txn, tableNotifications, indexOwner, r.owner.String())
		if err != nil {
			return err
		}
		for _, cur := range all {
			if cur.IsRead {
				continue
			}
			cur.IsRead = true
			if err := memPut(txn, tableNotifications, cur.ID, r.owner.String(), "", cur); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (r *memNotificationRepo) CountUnread(ctx context.Context) (int, error) {
	all, err := r.all()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, cur := range all {
		if !cur.IsRead {
			n++
		}
	}
	return n, nil
}

/* ------------------------------------------------------------------
   documents & audit logs
------------------------------------------------------------------ */

type memDocumentRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	d.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableDocuments, d.ID, r.owner.String(), "", d)
	})
}

func (r *memDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.Document, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Document](txn, tableDocuments, id, r.owner.String())
		return err
	})
	return out, err
}

func (r *memDocumentRepo) List(ctx context.Context, f DocumentFilter) ([]*models.Document, error) {
	var all []*models.Document
	err := r.s.read(func(txn *memdb.Txn) (err error) {
		all, err = memAll[models.Document](txn, tableDocuments, indexOwner, r.owner.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []*models.Document
	for _, d := range all {
		if f.RelatedType != "" && d.RelatedType != f.RelatedType {
			continue
		}
		if f.RelatedID != nil && d.RelatedID != *f.RelatedID {
			continue
		}
		out = append(out, d)
	}
	sortByCreatedDesc(out, func(d *models.Document) time.Time { return d.CreatedAt })
	return out, nil
}

func (r *memDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		return memDelete(txn, tableDocuments, id, r.owner.String())
	})
}

type memAuditLogRepo struct {
	s     *MemoryStore
	owner uuid.UUID
}

func (r *memAuditLogRepo) Create(ctx context.Context, e *models.AuditLog) error {
	e.UserID = r.owner
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableAuditLogs, e.ID, r.owner.String(), "", e)
	})
}

func (r *memAuditLogRepo) filter(keep func(*models.AuditLog) bool) ([]*models.AuditLog, error) {
	var all []*models.AuditLog
	err := r.s.read(func(txn *memdb.Txn) (err error) {
		all, err = memAll[models.AuditLog](txn, tableAuditLogs, indexOwner, r.owner.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []*models.AuditLog
	for _, e := range all {
		if keep(e) {
			out = append(out, e)
		}
	}
	sortByCreatedDesc(out, func(e *models.AuditLog) time.Time { return e.CreatedAt })
	return out, nil
}

func (r *memAuditLogRepo) List(ctx context.Context, entityType models.AuditEntityType, limit int) ([]*models.AuditLog, error) {
	out, err := r.filter(func(e *models.AuditLog) bool {
		return entityType == "" || e.EntityType == entityType
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *memAuditLogRepo) ListForEntity(ctx context.Context, entityType models.AuditEntityType, entityID uuid.UUID) ([]*models.AuditLog, error) {
	return r.filter(func(e *models.AuditLog) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	})
}
