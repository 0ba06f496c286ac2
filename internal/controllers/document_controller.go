package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	"github.com/Patator33/Gestion-locative/internal/services"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

type DocumentController struct {
	documents *services.DocumentService
}

func NewDocumentController(s *services.DocumentService) *DocumentController {
	return &DocumentController{documents: s}
}

// POST /api/documents/upload (multipart)
func (c *DocumentController) UploadHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	// Room for the form fields on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, c.documents.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.RespondErrorWithCode(w, http.StatusRequestEntityTooLarge, utils.ErrCodePayloadTooLarge, "Fichier trop volumineux", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid multipart form", nil, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(constants.DocumentFormField)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing file", nil, err)
		return
	}
	defer file.Close()

	form := dtos.UploadDocumentForm{
		Name:         r.FormValue("name"),
		DocumentType: r.FormValue("document_type"),
		RelatedType:  r.FormValue("related_type"),
		RelatedID:    r.FormValue("related_id"),
		Notes:        r.FormValue("notes"),
	}
	if !validateStruct(w, r, &form) {
		return
	}

	doc, err := c.documents.Upload(r.Context(), owner, form, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, err, "Failed to store document")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// GET /api/documents?related_type=&related_id=
func (c *DocumentController) ListHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	filter := repositories.DocumentFilter{RelatedType: r.URL.Query().Get("related_type")}
	if raw := r.URL.Query().Get("related_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid related_id", nil, err)
			return
		}
		filter.RelatedID = &id
	}
	list, err := c.documents.List(r.Context(), owner, filter)
	if err != nil {
		respondServiceError(w, err, "Failed to list documents")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/documents/{id}
func (c *DocumentController) GetHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	doc, err := c.documents.Get(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to load document")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// GET /api/documents/{id}/download
func (c *DocumentController) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	doc, rc, err := c.documents.Open(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err, "Failed to open document")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		utils.Logger.WithError(err).WithField("document_id", id).Warn("Document download interrupted")
	}
}

// DELETE /api/documents/{id}
func (c *DocumentController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := c.documents.Delete(r.Context(), owner, id); err != nil {
		respondServiceError(w, err, "Failed to delete document")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Document supprimé"})
}
