package dtos

// UploadDocumentForm holds the non-file fields of a multipart upload.
type UploadDocumentForm struct {
	Name         string `validate:"required,max=255"`
	DocumentType string `validate:"required,oneof=bail etat_lieux_entree etat_lieux_sortie attestation autre"`
	RelatedType  string `validate:"required,oneof=property tenant lease"`
	RelatedID    string `validate:"required,uuid"`
	Notes        string `validate:"max=2000"`
}
