package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rrsartgit/legalnexus/internal/auth"
	"github.com/rrsartgit/legalnexus/internal/models"
	"github.com/rrsartgit/legalnexus/internal/services"
	"github.com/rrsartgit/legalnexus/internal/utils"
)

const (
	MaxFileSize = 10 << 20 // 10MB
)

type DocumentHandler struct {
	service services.DocumentService
	logger  *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, utils.NewUnauthorizedError("Unauthorized"))
		return
	}

	// Reject oversized requests before reading the body.
	if r.ContentLength > MaxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds 10MB limit"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)

	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(w, h.logger, utils.NewBadRequestError("File size exceeds 10MB limit"))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	contentType := determineContentType(header.Filename, header.Header.Get("Content-Type"))

	if !isValidContentType(contentType) {
		respondError(w, h.logger, utils.NewBadRequestError("Only PDF, JPEG and PNG files are allowed"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}

	if len(data) > MaxFileSize {
		respondError(w, h.logger, utils.NewBadRequestError("File size exceeds 10MB limit"))
		return
	}

	if len(data) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}

	req := &models.UploadRequest{
		UserID:      session.UserID,
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}

	resp, err := h.service.UploadDocument(r.Context(), req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, utils.NewUnauthorizedError("Unauthorized"))
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Document ID is required"))
		return
	}

	doc, err := h.service.GetDocument(r.Context(), session.UserID, id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, utils.NewUnauthorizedError("Unauthorized"))
		return
	}

	docs, err := h.service.ListDocuments(r.Context(), session.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, docs)
}

func (h *DocumentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, utils.NewUnauthorizedError("Unauthorized"))
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Document ID is required"))
		return
	}

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	elevated := session.HasScope(auth.ScopeService)
	if err := h.service.UpdateStatus(r.Context(), session.UserID, elevated, id, req.Status); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *DocumentHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, utils.NewUnauthorizedError("Unauthorized"))
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Task ID is required"))
		return
	}

	task, err := h.service.GetTask(r.Context(), session.UserID, id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, task)
}

// determineContentType resolves the content type from the filename extension
// with fallback to the client-reported header.
func determineContentType(filename, headerContentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}

	return headerContentType
}

func isValidContentType(contentType string) bool {
	validTypes := map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/png":       true,
	}

	return validTypes[contentType]
}
