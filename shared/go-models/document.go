package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentLease         DocumentType = "bail"
	DocumentInspectionIn  DocumentType = "etat_lieux_entree"
	DocumentInspectionOut DocumentType = "etat_lieux_sortie"
	DocumentCertificate   DocumentType = "attestation"
	DocumentOther         DocumentType = "autre"
)

type Document struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Name         string       `json:"name"`
	DocumentType DocumentType `json:"document_type"`
	RelatedType  string       `json:"related_type"`
	RelatedID    uuid.UUID    `json:"related_id"`
	Notes        *string      `json:"notes,omitempty"`
	Filename     string       `json:"filename"`
	FileSize     int64        `json:"file_size"`
	MimeType     string       `json:"mime_type"`
	CreatedAt    time.Time    `json:"created_at"`
}
