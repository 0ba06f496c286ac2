package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// List returns payments newest first by payment date.
	List(ctx context.Context) ([]*models.Payment, error)
	ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Payment, error)
	ListForPeriod(ctx context.Context, month, year int) ([]*models.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepo struct {
	db    DB
	owner uuid.UUID
}

func newPaymentRepository(db DB, owner uuid.UUID) PaymentRepository {
	return &paymentRepo{db: db, owner: owner}
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	p.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO payments (
            id, user_id, lease_id, amount, payment_date, period_month, period_year,
            payment_method, notes, status, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `,
		p.ID, p.UserID, p.LeaseID, p.Amount, p.PaymentDate, p.PeriodMonth, p.PeriodYear,
		string(p.PaymentMethod), p.Notes, p.Status, p.CreatedAt,
	)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, baseSelectPayment()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanPayment(row))
}

func (r *paymentRepo) List(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE user_id=$1 ORDER BY payment_date DESC, created_at DESC", r.owner)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE user_id=$1 AND lease_id=$2 ORDER BY payment_date DESC, created_at DESC",
		r.owner, leaseID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) ListForPeriod(ctx context.Context, month, year int) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPayment()+" WHERE user_id=$1 AND period_month=$2 AND period_year=$3 ORDER BY created_at",
		r.owner, month, year)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id=$1 AND user_id=$2`, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectPayment() string {
	return `
        SELECT
            id, user_id, lease_id, amount, payment_date, period_month, period_year,
            payment_method, notes, status, created_at
        FROM payments
    `
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		p      models.Payment
		method string
	)
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.LeaseID,
		&p.Amount,
		&p.PaymentDate,
		&p.PeriodMonth,
		&p.PeriodYear,
		&method,
		&p.Notes,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PaymentMethod = models.PaymentMethod(method)
	return &p, nil
}
