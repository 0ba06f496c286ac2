package services

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
)

func newDocumentService(t *testing.T, f *fixture) *DocumentService {
	t.Helper()
	blobs, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	return NewDocumentService(f.cfg, f.store, blobs, f.audit)
}

func TestDocumentUploadDownloadDelete(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentService(t, f)
	p := f.property(t, "T2", 700, 40)

	form := dtos.UploadDocumentForm{
		Name:         "Bail 2025",
		DocumentType: "bail",
		RelatedType:  "property",
		RelatedID:    p.ID.String(),
	}
	doc, err := docs.Upload(f.ctx, f.owner, form, "../../bail.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "bail.pdf", doc.Filename)
	assert.EqualValues(t, 8, doc.FileSize)

	list, err := docs.List(f.ctx, f.owner, repositories.DocumentFilter{RelatedType: "property", RelatedID: &p.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	meta, rc, err := docs.Open(f.ctx, f.owner, doc.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
	assert.Equal(t, "application/pdf", meta.MimeType)

	_, _, err = docs.Open(f.ctx, uuid.New(), doc.ID)
	assert.ErrorIs(t, err, internal_utils.ErrNotFound)

	require.NoError(t, docs.Delete(f.ctx, f.owner, doc.ID))
	_, _, err = docs.Open(f.ctx, f.owner, doc.ID)
	assert.ErrorIs(t, err, internal_utils.ErrNotFound)
}

func TestDocumentUploadRejections(t *testing.T) {
	f := newFixture(t)
	docs := newDocumentService(t, f)
	p := f.property(t, "T2", 700, 40)
	form := dtos.UploadDocumentForm{Name: "x", DocumentType: "autre", RelatedType: "property", RelatedID: p.ID.String()}

	_, err := docs.Upload(f.ctx, f.owner, form, "big.bin", "", strings.NewReader(strings.Repeat("a", 1025)))
	assert.ErrorIs(t, err, internal_utils.ErrFileTooLarge)

	form.RelatedID = uuid.NewString()
	_, err = docs.Upload(f.ctx, f.owner, form, "a.txt", "", strings.NewReader("a"))
	assert.ErrorIs(t, err, internal_utils.ErrNotFound)

	form.RelatedID = "not-a-uuid"
	_, err = docs.Upload(f.ctx, f.owner, form, "a.txt", "", strings.NewReader("a"))
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)

	list, err := docs.List(f.ctx, f.owner, repositories.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
