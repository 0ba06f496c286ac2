package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

// DocumentFilter narrows List. Zero values match everything.
type DocumentFilter struct {
	RelatedType string
	RelatedID   *uuid.UUID
}

type DocumentRepository interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	// List returns documents newest first.
	List(ctx context.Context, f DocumentFilter) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepo struct {
	db    DB
	owner uuid.UUID
}

func newDocumentRepository(db DB, owner uuid.UUID) DocumentRepository {
	return &documentRepo{db: db, owner: owner}
}

func (r *documentRepo) Create(ctx context.Context, d *models.Document) error {
	d.UserID = r.owner
	_, err := r.db.Exec(ctx, `
        INSERT INTO documents (
            id, user_id, name, document_type, related_type, related_id, notes,
            filename, file_size, mime_type, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `,
		d.ID, d.UserID, d.Name, string(d.DocumentType), d.RelatedType, d.RelatedID, d.Notes,
		d.Filename, d.FileSize, d.MimeType, d.CreatedAt,
	)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := r.db.QueryRow(ctx, baseSelectDocument()+" WHERE id=$1 AND user_id=$2", id, r.owner)
	return noRows(scanDocument(row))
}

func (r *documentRepo) List(ctx context.Context, f DocumentFilter) ([]*models.Document, error) {
	sql := baseSelectDocument() + " WHERE user_id=$1"
	args := []any{r.owner}
	if f.RelatedType != "" {
		args = append(args, f.RelatedType)
		sql += " AND related_type=$2"
	}
	if f.RelatedID != nil {
		args = append(args, *f.RelatedID)
		if len(args) == 3 {
			sql += " AND related_id=$3"
		} else {
			sql += " AND related_id=$2"
		}
	}
	sql += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDocument)
}

func (r *documentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id=$1 AND user_id=$2`, id, r.owner)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectDocument() string {
	return `
        SELECT
            id, user_id, name, document_type, related_type, related_id, notes,
            filename, file_size, mime_type, created_at
        FROM documents
    `
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		d   models.Document
		typ string
	)
	err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&typ,
		&d.RelatedType,
		&d.RelatedID,
		&d.Notes,
		&d.Filename,
		&d.FileSize,
		&d.MimeType,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.DocumentType = models.DocumentType(typ)
	return &d, nil
}
