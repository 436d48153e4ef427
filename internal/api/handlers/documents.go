package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cloo-solutions/shopdesk/internal/api"
	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// maxDocumentBytes bounds an uploaded document held in memory
const maxDocumentBytes = 4 << 20

type DocumentUploader interface {
	Upload(ctx context.Context, tenant domain.Tenant, name string, content []byte) (*domain.Document, error)
}

type DocumentHandler struct {
	svc DocumentUploader
}

func NewDocumentHandler(svc DocumentUploader) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type UploadDocumentResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	App      string `json:"app"`
}

// Upload stores a multipart "document" file for the tenant named by the "app" field
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxDocumentBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	app := r.FormValue("app")
	tenant, err := domain.ParseTenant(app)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid application specified")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "document is required")
		return
	}
	defer file.Close()

	if err := domain.ValidateDocumentName(header.Filename); err != nil {
		if errors.Is(err, domain.ErrUnsupportedDocument) {
			api.Error(w, http.StatusBadRequest, "Only .txt files are supported")
			return
		}
		api.HandleError(w, err)
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes+1))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read document")
		return
	}
	if len(content) > maxDocumentBytes {
		api.Error(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	doc, err := h.svc.Upload(r.Context(), tenant, header.Filename, content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, UploadDocumentResponse{
		Message:  fmt.Sprintf("Document successfully uploaded to %s", tenant.DocumentFolder()),
		Filename: doc.Name,
		App:      app,
	})
}
