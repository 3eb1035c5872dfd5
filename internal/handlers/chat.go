package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"memorag/internal/contextutil"
	"memorag/internal/llm"
	"memorag/internal/service"
	"memorag/internal/vectorstore"
)

// ChatHandler handles HTTP requests for question answering.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for question answering.
// With ?stream=true the answer is streamed as Server-Sent Events, followed
// by a references event and a [DONE] marker.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreaming(ctx, w, r)
		return
	}

	var req service.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.Ask(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to answer question")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}

// handleStreaming streams the answer using Server-Sent Events.
func (h *ChatHandler) handleStreaming(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logger := contextutil.LoggerFromContext(ctx)

	var req service.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body for streaming", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	refs, err := h.chatService.StreamAsk(ctx, req, func(chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "error streaming answer", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return
	}

	if len(refs) > 0 {
		payload, err := json.Marshal(struct {
			References []service.Reference `json:"references"`
		}{References: refs})
		if err == nil {
			_, _ = fmt.Fprintf(w, "event: references\ndata: %s\n\n", payload)
		}
	}

	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	var embeddingErr *llm.EmbeddingError
	if errors.As(err, &embeddingErr) {
		writeError(w, http.StatusBadGateway, "Embedding service unavailable")
		return
	}

	if errors.Is(err, vectorstore.ErrStoreQuery) {
		writeError(w, http.StatusBadGateway, "Search backend unavailable")
		return
	}

	if errors.Is(err, service.ErrExternalService) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
