package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
	UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) error
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetCurrentProperty assigns or clears (nil) the tenant's home.
	SetCurrentProperty(ctx context.Context, id uuid.UUID, propertyID *uuid.UUID) error
}

type tenantRepo struct {
	db    DB
	owner uuid.UUID
}

func newTenantRepository(db DB, owner uuid.UUID) TenantRepository {
	return &tenantRepo{db: db, owner: owner}
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	t.UserID = r.owner
	t.RowVersion = 1
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenants (
            id, user_id, first_name, last_name, email, phone, birth_date,
            profession, emergency_contact, notes, current_property_id,
            created_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,1)
    `,
		t.ID, t.UserID, t.FirstName, t.LastName, t.Email, t.Phone, t.BirthDate,
		t.Profession, t.EmergencyContact, t.Notes, t.CurrentPropertyID, t.CreatedAt,
	)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx, baseSelectTenant()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanTenant(row))
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, baseSelectTenant()+" WHERE user_id=$1 ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTenant)
}

func (r *tenantRepo) UpdateIfVersion(ctx context.Context, t *models.Tenant, expected int64) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenants SET
            first_name=$1, last_name=$2, email=$3, phone=$4, birth_date=$5,
            profession=$6, emergency_contact=$7, notes=$8,
            row_version=row_version+1
        WHERE id=$9 AND user_id=$10 AND row_version=$11
    `,
		t.FirstName, t.LastName, t.Email, t.Phone, t.BirthDate,
		t.Profession, t.EmergencyContact, t.Notes,
		t.ID, r.owner, expected,
	)
	return affectedOne(tag, err, ErrRowVersionConflict)
}

func (r *tenantRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *tenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenants WHERE id=$1 AND user_id=$2`, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func (r *tenantRepo) SetCurrentProperty(ctx context.Context, id uuid.UUID, propertyID *uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tenants SET current_property_id=$1 WHERE id=$2 AND user_id=$3`,
		propertyID, id, r.owner,
	)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectTenant() string {
	return `
        SELECT
            id, user_id, first_name, last_name, email, phone, birth_date,
            profession, emergency_contact, notes, current_property_id,
            created_at, row_version
        FROM tenants
    `
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.FirstName,
		&t.LastName,
		&t.Email,
		&t.Phone,
		&t.BirthDate,
		&t.Profession,
		&t.EmergencyContact,
		&t.Notes,
		&t.CurrentPropertyID,
		&t.CreatedAt,
		&t.RowVersion,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
