package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"memorag/internal/contextutil"
	"memorag/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// Ingestor ingests a document file into the index.
// This interface is defined from the handler's perspective (consumer-first).
type Ingestor interface {
	IngestFile(ctx context.Context, path string) error
}

// DocumentsHandler handles document upload and listing.
type DocumentsHandler struct {
	docRepo   storage.DocumentStore
	ingestor  Ingestor
	uploadDir string
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docRepo storage.DocumentStore, ingestor Ingestor, uploadDir string) *DocumentsHandler {
	return &DocumentsHandler{
		docRepo:   docRepo,
		ingestor:  ingestor,
		uploadDir: uploadDir,
	}
}

// DocumentResponse represents a document in listing responses.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ServeHTTP dispatches document requests: POST uploads and ingests a file,
// GET lists ingested documents.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleUpload(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleUpload accepts a multipart file upload, saves it to the documents
// directory and ingests it.
func (h *DocumentsHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		logger.ErrorContext(ctx, "failed to create upload directory", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	destPath := filepath.Join(h.uploadDir, filename)
	dest, err := os.Create(destPath)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create file", "path", destPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}
	if _, err := io.Copy(dest, file); err != nil {
		_ = dest.Close()
		logger.ErrorContext(ctx, "failed to write file", "path", destPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}
	if err := dest.Close(); err != nil {
		logger.ErrorContext(ctx, "failed to close file", "path", destPath, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	if err := h.ingestor.IngestFile(ctx, destPath); err != nil {
		logger.ErrorContext(ctx, "failed to ingest uploaded file", "filename", filename, "error", err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to ingest file: %v", err))
		return
	}

	logger.InfoContext(ctx, "document uploaded and ingested", "filename", filename)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"filename": filename, "status": "ingested"})
}

// handleList returns all ingested documents.
func (h *DocumentsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, DocumentResponse{
			ID:        doc.ID,
			Filename:  doc.Filename,
			Title:     doc.Title,
			CreatedAt: doc.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
