package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type DocumentService struct {
	store    repositories.Store
	blobs    BlobStore
	audit    *AuditService
	maxBytes int64
}

func NewDocumentService(cfg *config.Config, store repositories.Store, blobs BlobStore, audit *AuditService) *DocumentService {
	max := cfg.MaxUploadBytes
	if max <= 0 {
		max = constants.DefaultMaxUploadBytes
	}
	return &DocumentService{store: store, blobs: blobs, audit: audit, maxBytes: max}
}

func (s *DocumentService) MaxBytes() int64 { return s.maxBytes }

// Upload stores the file first and then its metadata; a failed metadata
// write removes the blob again.
func (s *DocumentService) Upload(
	ctx context.Context,
	ownerID uuid.UUID,
	form dtos.UploadDocumentForm,
	filename, mimeType string,
	content io.Reader,
) (*models.Document, error) {
	relatedID, err := uuid.Parse(form.RelatedID)
	if err != nil {
		return nil, fmt.Errorf("%w: related_id", internal_utils.ErrInvalidPayload)
	}
	if err := s.checkRelated(ctx, s.store.ForOwner(ownerID), form.RelatedType, relatedID); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:           uuid.New(),
		Name:         form.Name,
		DocumentType: models.DocumentType(form.DocumentType),
		RelatedType:  form.RelatedType,
		RelatedID:    relatedID,
		Filename:     filepath.Base(filename),
		MimeType:     mimeType,
		CreatedAt:    time.Now().UTC(),
	}
	if notes := strings.TrimSpace(form.Notes); notes != "" {
		doc.Notes = &notes
	}
	if doc.MimeType == "" {
		doc.MimeType = "application/octet-stream"
	}

	size, err := s.blobs.Put(ctx, ownerID, doc.ID, content, s.maxBytes)
	if err != nil {
		return nil, err
	}
	doc.FileSize = size

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.ForOwner(ownerID).Documents().Create(ctx, doc); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityDocument,
			EntityID:   doc.ID,
			EntityName: doc.Name,
		})
	})
	if err != nil {
		if derr := s.blobs.Delete(ctx, ownerID, doc.ID); derr != nil {
			utils.Logger.WithError(derr).WithField("document_id", doc.ID).Error("Failed to remove orphaned upload")
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) checkRelated(ctx context.Context, repos repositories.OwnerStore, relatedType string, id uuid.UUID) error {
	var found bool
	switch relatedType {
	case "property":
		p, err := repos.Properties().GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = p != nil
	case "tenant":
		t, err := repos.Tenants().GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = t != nil
	case "lease":
		l, err := repos.Leases().GetByID(ctx, id)
		if err != nil {
			return err
		}
		found = l != nil
	default:
		return fmt.Errorf("%w: related_type", internal_utils.ErrInvalidPayload)
	}
	if !found {
		return missing(internal_utils.ErrNotFound, id)
	}
	return nil
}

func (s *DocumentService) List(ctx context.Context, ownerID uuid.UUID, filter repositories.DocumentFilter) ([]*models.Document, error) {
	docs, err := s.store.ForOwner(ownerID).Documents().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Document, error) {
	doc, err := s.store.ForOwner(ownerID).Documents().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, missing(internal_utils.ErrNotFound, id)
	}
	return doc, nil
}

// Open returns the metadata and content; the caller closes the reader.
func (s *DocumentService) Open(ctx context.Context, ownerID, id uuid.UUID) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, rc, nil
}

func (s *DocumentService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		repos := tx.ForOwner(ownerID)
		doc, err := repos.Documents().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return missing(internal_utils.ErrNotFound, id)
		}
		if err := repos.Documents().Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, ownerID, AuditEntry{
			Action:     models.AuditDelete,
			EntityType: models.EntityDocument,
			EntityID:   id,
			EntityName: doc.Name,
		})
	})
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, ownerID, id); err != nil {
		utils.Logger.WithError(err).WithField("document_id", id).Warn("Document file could not be removed")
	}
	return nil
}
