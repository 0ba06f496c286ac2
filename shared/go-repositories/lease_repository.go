package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	List(ctx context.Context) ([]*models.Lease, error)
	ListActive(ctx context.Context) ([]*models.Lease, error)

	// Terminate deactivates the lease and records its end date.
	Terminate(ctx context.Context, id uuid.UUID, endDate time.Time) error
}

type leaseRepo struct {
	db    DB
	owner uuid.UUID
}

func newLeaseRepository(db DB, owner uuid.UUID) LeaseRepository {
	return &leaseRepo{db: db, owner: owner}
}

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	l.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO leases (
            id, user_id, property_id, tenant_id, start_date, end_date,
            rent_amount, charges, deposit, payment_day, notes, is_active, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    `,
		l.ID, l.UserID, l.PropertyID, l.TenantID, l.StartDate, l.EndDate,
		l.RentAmount, l.Charges, l.Deposit, l.PaymentDay, l.Notes, l.IsActive, l.CreatedAt,
	)
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx, baseSelectLease()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanLease(row))
}

func (r *leaseRepo) List(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" WHERE user_id=$1 ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLease)
}

func (r *leaseRepo) ListActive(ctx context.Context) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx,
		baseSelectLease()+" WHERE user_id=$1 AND is_active ORDER BY created_at", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLease)
}

func (r *leaseRepo) Terminate(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leases SET is_active=FALSE, end_date=$1 WHERE id=$2 AND user_id=$3`,
		endDate, id, r.owner,
	)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectLease() string {
	return `
        SELECT
            id, user_id, property_id, tenant_id, start_date, end_date,
            rent_amount, charges, deposit, payment_day, notes, is_active, created_at
        FROM leases
    `
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(
		&l.ID,
		&l.UserID,
		&l.PropertyID,
		&l.TenantID,
		&l.StartDate,
		&l.EndDate,
		&l.RentAmount,
		&l.Charges,
		&l.Deposit,
		&l.PaymentDay,
		&l.Notes,
		&l.IsActive,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
