package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks memorag/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks memorag/internal/service Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks memorag/internal/service Retriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService memorag/internal/service ChatService

import (
	"context"
	"fmt"
	"strings"

	"memorag/internal/contextutil"
	"memorag/internal/llm"
	"memorag/internal/rag"
	"memorag/internal/textutil"
)

const (
	defaultRetrievalLimit = 5
	maxRetrievalLimit     = 20
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends a conversation to the LLM and returns the reply.
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	// StreamChat sends a conversation to the LLM and streams the reply via callback.
	StreamChat(ctx context.Context, messages []llm.Message, callback func(chunk string) error) error
}

// Embedder generates an embedding vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns scored candidates for a query embedding.
type Retriever interface {
	Retrieve(ctx context.Context, queryVec []float32, keywords []string, limit int) ([]rag.ScoredCandidate, error)
}

// AskRequest represents a question in the domain layer.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	// K optionally overrides the retrieval candidate count.
	K int `json:"k,omitempty"`
}

// Reference points at a context passage that informed the answer.
type Reference struct {
	Filename    string  `json:"filename"`
	HeadingPath string  `json:"heading_path"`
	PartNumber  int     `json:"part_number"`
	TotalParts  int     `json:"total_parts"`
	Score       float64 `json:"score"`
}

// AskResponse represents an answer with its supporting references.
type AskResponse struct {
	Answer     string      `json:"answer"`
	References []Reference `json:"references"`
}

// ChatService answers questions grounded in the indexed documents.
type ChatService interface {
	// Ask answers a question and returns the full reply.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// StreamAsk answers a question, streaming reply chunks via callback.
	// The references are known before streaming starts.
	StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) ([]Reference, error)
}

// chatService implements ChatService.
type chatService struct {
	embedder   Embedder
	retriever  Retriever
	selector   *rag.Selector
	llmClient  LLMClient
	contextCfg rag.ContextConfig
}

// NewChatService creates a new ChatService.
func NewChatService(embedder Embedder, retriever Retriever, selector *rag.Selector, llmClient LLMClient, contextCfg rag.ContextConfig) ChatService {
	return &chatService{
		embedder:   embedder,
		retriever:  retriever,
		selector:   selector,
		llmClient:  llmClient,
		contextCfg: contextCfg,
	}
}

// Ask answers a question using retrieved context.
func (s *chatService) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages, refs, err := s.prepare(ctx, req)
	if err != nil {
		return AskResponse{}, err
	}

	answer, err := s.llmClient.Chat(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, fmt.Errorf("failed to get LLM response: %w: %w", ErrExternalService, err)
	}

	logger.InfoContext(ctx, "question answered", "question_length", len(req.Question), "references", len(refs))
	return AskResponse{Answer: answer, References: refs}, nil
}

// StreamAsk answers a question, streaming the reply.
func (s *chatService) StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) ([]Reference, error) {
	logger := contextutil.LoggerFromContext(ctx)

	messages, refs, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.llmClient.StreamChat(ctx, messages, callback); err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return nil, fmt.Errorf("failed to stream LLM response: %w: %w", ErrExternalService, err)
	}

	logger.InfoContext(ctx, "question answered via stream", "question_length", len(req.Question), "references", len(refs))
	return refs, nil
}

// prepare validates the request, retrieves and selects context, and builds
// the conversation to send to the LLM.
func (s *chatService) prepare(ctx context.Context, req AskRequest) ([]llm.Message, []Reference, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in ask request")
		return nil, nil, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	limit := req.K
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}
	if limit > maxRetrievalLimit {
		limit = maxRetrievalLimit
	}

	queryVec, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return nil, nil, WrapError(err, "failed to embed question")
	}

	keywords := textutil.ExtractKeywords(req.Question)

	candidates, err := s.retriever.Retrieve(ctx, queryVec, keywords, limit)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return nil, nil, WrapError(err, "retrieval failed")
	}

	selected := s.selector.Select(candidates, s.contextCfg)

	refs := make([]Reference, 0, len(selected))
	for _, sc := range selected {
		for _, cand := range candidates {
			if cand.Content == sc.Content {
				refs = append(refs, Reference{
					Filename:    cand.Filename,
					HeadingPath: cand.HeadingPath,
					PartNumber:  cand.PartNumber,
					TotalParts:  cand.TotalParts,
					Score:       sc.RelevanceScore,
				})
				break
			}
		}
	}

	messages := []llm.Message{
		{Role: "system", Content: buildSystemPrompt(selected)},
		{Role: "user", Content: req.Question},
	}

	logger.InfoContext(ctx, "context prepared",
		"keywords", len(keywords),
		"candidates", len(candidates),
		"selected", len(selected),
	)
	return messages, refs, nil
}

// buildSystemPrompt assembles the grounding prompt from selected contexts.
func buildSystemPrompt(selected []rag.SelectedContext) string {
	if len(selected) == 0 {
		return "ユーザの質問に答えてください。"
	}

	var b strings.Builder
	b.WriteString("以下の情報を参考にして、ユーザの質問に答えてください。\n")
	for i, sc := range selected {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sc.Content)
	}
	return b.String()
}
