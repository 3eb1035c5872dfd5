package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"memorag/internal/storage"
	"memorag/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

type fakeIngestor struct {
	paths []string
	err   error
}

func (f *fakeIngestor) IngestFile(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func multipartBody(t *testing.T, fieldName, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestDocumentsHandler_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uploadDir := t.TempDir()
	ingestor := &fakeIngestor{}
	handler := NewDocumentsHandler(mocks.NewMockDocumentStore(ctrl), ingestor, uploadDir)

	body, contentType := multipartBody(t, "file", "guide.md", "# Guide\nSome content.")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["filename"] != "guide.md" || resp["status"] != "ingested" {
		t.Errorf("response = %v", resp)
	}

	wantPath := filepath.Join(uploadDir, "guide.md")
	if len(ingestor.paths) != 1 || ingestor.paths[0] != wantPath {
		t.Errorf("ingested paths = %v, want [%s]", ingestor.paths, wantPath)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("uploaded file not stored: %v", err)
	}
	if string(data) != "# Guide\nSome content." {
		t.Errorf("stored content = %q", string(data))
	}
}

func TestDocumentsHandler_UploadStripsPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uploadDir := t.TempDir()
	ingestor := &fakeIngestor{}
	handler := NewDocumentsHandler(mocks.NewMockDocumentStore(ctrl), ingestor, uploadDir)

	body, contentType := multipartBody(t, "file", "../../etc/notes.md", "content")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	wantPath := filepath.Join(uploadDir, "notes.md")
	if len(ingestor.paths) != 1 || ingestor.paths[0] != wantPath {
		t.Errorf("ingested paths = %v, want [%s]", ingestor.paths, wantPath)
	}
}

func TestDocumentsHandler_UploadMissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewDocumentsHandler(mocks.NewMockDocumentStore(ctrl), &fakeIngestor{}, t.TempDir())

	body, contentType := multipartBody(t, "attachment", "guide.md", "content")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDocumentsHandler_UploadIngestFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ingestor := &fakeIngestor{err: errors.New("unsupported format")}
	handler := NewDocumentsHandler(mocks.NewMockDocumentStore(ctrl), ingestor, t.TempDir())

	body, contentType := multipartBody(t, "file", "data.md", "content")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "unsupported format") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDocumentsHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := mocks.NewMockDocumentStore(ctrl)
	mockRepo.EXPECT().
		ListAll(gomock.Any()).
		Return([]*storage.DocumentRecord{
			{ID: "d-1", Filename: "a.md", Title: "A", CreatedAt: created},
			{ID: "d-2", Filename: "b.md", Title: "B", CreatedAt: created},
		}, nil)

	handler := NewDocumentsHandler(mockRepo, &fakeIngestor{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp []DocumentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0].ID != "d-1" || resp[0].Filename != "a.md" || resp[0].Title != "A" {
		t.Errorf("resp[0] = %+v", resp[0])
	}
}

func TestDocumentsHandler_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockDocumentStore(ctrl)
	mockRepo.EXPECT().
		ListAll(gomock.Any()).
		Return(nil, errors.New("db closed"))

	handler := NewDocumentsHandler(mockRepo, &fakeIngestor{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestDocumentsHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewDocumentsHandler(mocks.NewMockDocumentStore(ctrl), &fakeIngestor{}, t.TempDir())

	req := httptest.NewRequest(http.MethodDelete, "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
