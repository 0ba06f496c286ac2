package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	List(ctx context.Context) ([]*models.Property, error)

	// UpdateIfVersion writes the descriptive fields only. Occupancy is
	// owned by MarkOccupied / MarkVacant.
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) error
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkOccupied sets the occupant. With onlyIfVacant it is a
	// conditional write failing with ErrConditionFailed when the property
	// is already occupied.
	MarkOccupied(ctx context.Context, id, tenantID uuid.UUID, onlyIfVacant bool) error
	MarkVacant(ctx context.Context, id uuid.UUID) error
}

type propertyRepo struct {
	db    DB
	owner uuid.UUID
}

func newPropertyRepository(db DB, owner uuid.UUID) PropertyRepository {
	return &propertyRepo{db: db, owner: owner}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	p.UserID = r.owner
	p.RowVersion = 1
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, user_id, name, address, city, postal_code, property_type,
            surface, rooms, rent_amount, charges, description, image_url,
            is_occupied, current_tenant_id, created_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,1)
    `,
		p.ID, p.UserID, p.Name, p.Address, p.City, p.PostalCode, p.PropertyType,
		p.Surface, p.Rooms, p.RentAmount, p.Charges, p.Description, p.ImageURL,
		p.IsOccupied, p.CurrentTenantID, p.CreatedAt,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanProperty(row))
}

func (r *propertyRepo) List(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" WHERE user_id=$1 ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanProperty)
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE properties SET
            name=$1, address=$2, city=$3, postal_code=$4, property_type=$5,
            surface=$6, rooms=$7, rent_amount=$8, charges=$9, description=$10,
            image_url=$11, row_version=row_version+1
        WHERE id=$12 AND user_id=$13 AND row_version=$14
    `,
		p.Name, p.Address, p.City, p.PostalCode, p.PropertyType,
		p.Surface, p.Rooms, p.RentAmount, p.Charges, p.Description,
		p.ImageURL, p.ID, r.owner, expected,
	)
	return affectedOne(tag, err, ErrRowVersionConflict)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *propertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id=$1 AND user_id=$2`, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func (r *propertyRepo) MarkOccupied(ctx context.Context, id, tenantID uuid.UUID, onlyIfVacant bool) error {
	sql := `UPDATE properties SET is_occupied=TRUE, current_tenant_id=$1 WHERE id=$2 AND user_id=$3`
	missing := ErrNotFound
	if onlyIfVacant {
		sql += ` AND is_occupied=FALSE`
		missing = ErrConditionFailed
	}
	tag, err := r.db.Exec(ctx, sql, tenantID, id, r.owner)
	return affectedOne(tag, err, missing)
}

func (r *propertyRepo) MarkVacant(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE properties SET is_occupied=FALSE, current_tenant_id=NULL
        WHERE id=$1 AND user_id=$2
    `, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectProperty() string {
	return `
        SELECT
            id, user_id, name, address, city, postal_code, property_type,
            surface, rooms, rent_amount, charges, description, image_url,
            is_occupied, current_tenant_id, created_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Address,
		&p.City,
		&p.PostalCode,
		&p.PropertyType,
		&p.Surface,
		&p.Rooms,
		&p.RentAmount,
		&p.Charges,
		&p.Description,
		&p.ImageURL,
		&p.IsOccupied,
		&p.CurrentTenantID,
		&p.CreatedAt,
		&p.RowVersion,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
