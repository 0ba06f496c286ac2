package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type VacancyRepository interface {
	Create(ctx context.Context, v *models.Vacancy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vacancy, error)
	List(ctx context.Context) ([]*models.Vacancy, error)
	ListActive(ctx context.Context) ([]*models.Vacancy, error)

	// CloseActiveForProperty ends every active vacancy of the property and
	// returns how many were closed.
	CloseActiveForProperty(ctx context.Context, propertyID uuid.UUID, endDate time.Time) (int64, error)
	End(ctx context.Context, id uuid.UUID, endDate time.Time) error
}

type vacancyRepo struct {
	db    DB
	owner uuid.UUID
}

func newVacancyRepository(db DB, owner uuid.UUID) VacancyRepository {
	return &vacancyRepo{db: db, owner: owner}
}

func (r *vacancyRepo) Create(ctx context.Context, v *models.Vacancy) error {
	v.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO vacancies (
            id, user_id, property_id, start_date, end_date, reason, is_active, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `,
		v.ID, v.UserID, v.PropertyID, v.StartDate, v.EndDate, v.Reason, v.IsActive, v.CreatedAt,
	)
	return err
}

func (r *vacancyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vacancy, error) {
	row := r.db.QueryRow(ctx, baseSelectVacancy()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanVacancy(row))
}

func (r *vacancyRepo) List(ctx context.Context) ([]*models.Vacancy, error) {
	rows, err := r.db.Query(ctx, baseSelectVacancy()+" WHERE user_id=$1 ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanVacancy)
}

func (r *vacancyRepo) ListActive(ctx context.Context) ([]*models.Vacancy, error) {
	rows, err := r.db.Query(ctx,
		baseSelectVacancy()+" WHERE user_id=$1 AND is_active ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanVacancy)
}

func (r *vacancyRepo) CloseActiveForProperty(ctx context.Context, propertyID uuid.UUID, endDate time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE vacancies SET is_active=FALSE, end_date=$1
        WHERE property_id=$2 AND user_id=$3 AND is_active
    `, endDate, propertyID, r.owner)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *vacancyRepo) End(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE vacancies SET is_active=FALSE, end_date=$1 WHERE id=$2 AND user_id=$3`,
		endDate, id, r.owner,
	)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectVacancy() string {
	return `
        SELECT id, user_id, property_id, start_date, end_date, reason, is_active, created_at
        FROM vacancies
    `
}

func scanVacancy(row pgx.Row) (*models.Vacancy, error) {
	var v models.Vacancy
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.PropertyID,
		&v.StartDate,
		&v.EndDate,
		&v.Reason,
		&v.IsActive,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
