package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"memorag/internal/service/mocks"
	storagemocks "memorag/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

type okCollectionChecker struct{}

func (okCollectionChecker) CollectionExists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type noopIngestor struct{}

func (noopIngestor) IngestFile(_ context.Context, _ string) error { return nil }

func testDeps(t *testing.T, ctrl *gomock.Controller) *Deps {
	t.Helper()
	return &Deps{
		ChatService:       mocks.NewMockChatService(ctrl),
		DocumentStore:     storagemocks.NewMockDocumentStore(ctrl),
		Ingestor:          noopIngestor{},
		CollectionChecker: okCollectionChecker{},
		CollectionName:    "documents",
		UploadDir:         t.TempDir(),
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(testDeps(t, ctrl))

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deps := testDeps(t, ctrl)
	deps.DocumentStore.(*storagemocks.MockDocumentStore).EXPECT().
		ListAll(gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	router := NewRouter(deps)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "POST /api/chat exists",
			method:     http.MethodPost,
			path:       "/api/chat",
			wantStatus: http.StatusBadRequest, // Bad request due to empty body, but route exists
		},
		{
			name:       "GET /api/chat method not allowed",
			method:     http.MethodGet,
			path:       "/api/chat",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "GET /api/documents exists",
			method:     http.MethodGet,
			path:       "/api/documents",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/documents exists",
			method:     http.MethodPost,
			path:       "/api/documents",
			wantStatus: http.StatusBadRequest, // No multipart body, but route exists
		},
		{
			name:       "GET /api/health exists",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(testDeps(t, ctrl))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
