package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	// List returns the newest notifications first, at most limit of them.
	List(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int, error)
}

type notificationRepo struct {
	db    DB
	owner uuid.UUID
}

func newNotificationRepository(db DB, owner uuid.UUID) NotificationRepository {
	return &notificationRepo{db: db, owner: owner}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO notifications (id, user_id, type, title, message, is_read, related_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.IsRead, n.RelatedID, n.CreatedAt)
	return err
}

func (r *notificationRepo) List(ctx context.Context, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, user_id, type, title, message, is_read, related_id, created_at
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2
    `, r.owner, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2`, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func (r *notificationRepo) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND NOT is_read`, r.owner)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) CountUnread(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT is_read`, r.owner).Scan(&n)
	return n, err
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var (
		n   models.Notification
		typ string
	)
	if err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.IsRead, &n.RelatedID, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	return &n, nil
}
