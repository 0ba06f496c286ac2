package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// List returns the newest entries first. An empty entityType matches all.
	List(ctx context.Context, entityType models.AuditEntityType, limit int) ([]*models.AuditLog, error)
	ListForEntity(ctx context.Context, entityType models.AuditEntityType, entityID uuid.UUID) ([]*models.AuditLog, error)
}

type auditLogRepo struct {
	db    DB
	owner uuid.UUID
}

func newAuditLogRepository(db DB, owner uuid.UUID) AuditLogRepository {
	return &auditLogRepo{db: db, owner: owner}
}

func (r *auditLogRepo) Create(ctx context.Context, e *models.AuditLog) error {
	e.UserID = r.owner
	var changes []byte
	if len(e.Changes) > 0 {
		var err error
		if changes, err = json.Marshal(e.Changes); err != nil {
			return err
		}
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO audit_logs (
            id, user_id, user_name, team_id, action, entity_type, entity_id,
            entity_name, changes, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `,
		e.ID, e.UserID, e.UserName, e.TeamID, string(e.Action), string(e.EntityType), e.EntityID,
		e.EntityName, changes, e.CreatedAt,
	)
	return err
}

func (r *auditLogRepo) List(ctx context.Context, entityType models.AuditEntityType, limit int) ([]*models.AuditLog, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if entityType == "" {
		rows, err = r.db.Query(ctx,
			baseSelectAuditLog()+" WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2", r.owner, limit)
	} else {
		rows, err = r.db.Query(ctx,
			baseSelectAuditLog()+" WHERE user_id=$1 AND entity_type=$2 ORDER BY created_at DESC LIMIT $3",
			r.owner, string(entityType), limit)
	}
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAuditLog)
}

func (r *auditLogRepo) ListForEntity(ctx context.Context, entityType models.AuditEntityType, entityID uuid.UUID) ([]*models.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		baseSelectAuditLog()+" WHERE user_id=$1 AND entity_type=$2 AND entity_id=$3 ORDER BY created_at DESC",
		r.owner, string(entityType), entityID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAuditLog)
}

func baseSelectAuditLog() string {
	return `
        SELECT
            id, user_id, user_name, team_id, action, entity_type, entity_id,
            entity_name, changes, created_at
        FROM audit_logs
    `
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	var (
		e          models.AuditLog
		action     string
		entityType string
		changes    []byte
	)
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.UserName,
		&e.TeamID,
		&action,
		&entityType,
		&e.EntityID,
		&e.EntityName,
		&changes,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Action = models.AuditAction(action)
	e.EntityType = models.AuditEntityType(entityType)
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
