package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"memorag/internal/handlers"
	"memorag/internal/service"
	"memorag/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService       service.ChatService
	DocumentStore     storage.DocumentStore
	Ingestor          handlers.Ingestor
	CollectionChecker handlers.CollectionChecker
	CollectionName    string
	UploadDir         string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocumentStore, deps.Ingestor, deps.UploadDir)
	healthHandler := handlers.NewHealthHandler(deps.CollectionChecker, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/documents", documentsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
