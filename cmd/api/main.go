package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"memorag/internal/chunker"
	"memorag/internal/config"
	"memorag/internal/http"
	"memorag/internal/indexer"
	"memorag/internal/llm"
	"memorag/internal/rag"
	"memorag/internal/service"
	"memorag/internal/storage"
	"memorag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	actualSize, err := embedder.Dimension(ctx)
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if actualSize != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, actualSize)
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create ingestion pipeline
	chunkCfg := chunker.Config{
		SizeBudget:          cfg.ChunkSizeBudget,
		OverlapRatio:        cfg.OverlapRatio,
		ForceSplitSentences: cfg.ForceSplitSentences,
	}
	pipeline := indexer.NewPipeline(
		docRepo,
		chunkRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		chunkCfg,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create retrieval and context selection
	retriever := rag.NewRetriever(vectorStore, cfg.QdrantCollection, chunkRepo, rag.RetrieverConfig{
		DistanceThreshold: float32(cfg.DistanceThreshold),
		VectorWeight:      cfg.VectorWeight,
		KeywordWeight:     cfg.KeywordWeight,
		MaxKeywordScore:   cfg.MaxKeywordScore,
		MinCombinedScore:  cfg.MinCombinedScore,
	})
	selector := rag.NewSelector()
	contextCfg := rag.ContextConfig{
		MaxTokens:          cfg.ContextMaxTokens,
		RelevanceThreshold: cfg.RelevanceThreshold,
		DiversityWeight:    cfg.DiversityWeight,
		HierarchyWeight:    cfg.HierarchyWeight,
	}

	chatService := service.NewChatService(embedder, retriever, selector, llmClient, contextCfg)
	slog.Info("Chat service initialized")

	// Create router with dependencies
	uploadDir := cfg.DocumentsDir
	if uploadDir == "" {
		uploadDir = "./data/documents"
	}
	deps := &http.Deps{
		ChatService:       chatService,
		DocumentStore:     docRepo,
		Ingestor:          pipeline,
		CollectionChecker: vectorStore,
		CollectionName:    cfg.QdrantCollection,
		UploadDir:         uploadDir,
	}
	router := http.NewRouter(deps)

	// Start ingestion in background after router is ready
	if cfg.DocumentsDir != "" {
		go func() {
			ingestCtx := context.Background()
			slog.Info("Starting background ingestion", "dir", cfg.DocumentsDir)
			stats, err := pipeline.IngestDir(ingestCtx, cfg.DocumentsDir)
			if err != nil {
				slog.Error("Ingestion completed with errors", "error", err,
					"ingested", stats.Ingested, "skipped", stats.Skipped, "failed", stats.Failed)
			} else {
				slog.Info("Ingestion completed successfully",
					"ingested", stats.Ingested, "skipped", stats.Skipped)
			}
		}()
	}

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
