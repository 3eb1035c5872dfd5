package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	DocumentsDir       string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string

	// Chunking
	ChunkSizeBudget     int
	OverlapRatio        float64
	ForceSplitSentences bool

	// Retrieval
	DistanceThreshold float64
	VectorWeight      float64
	KeywordWeight     float64
	MaxKeywordScore   float64
	MinCombinedScore  float64

	// Context selection
	ContextMaxTokens   int
	RelevanceThreshold float64
	DiversityWeight    float64
	HierarchyWeight    float64
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		DBPath:             getEnv("DB_PATH", "./data/memorag.db"),
		DocumentsDir:       getEnv("DOCUMENTS_DIR", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\"")
	}

	cfg.ChunkSizeBudget, err = getEnvInt("CHUNK_SIZE_BUDGET", 1000)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSizeBudget <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE_BUDGET must be greater than 0")
	}

	cfg.OverlapRatio, err = getEnvFloat("OVERLAP_RATIO", 0.15)
	if err != nil {
		return nil, err
	}
	if cfg.OverlapRatio < 0 || cfg.OverlapRatio >= 1 {
		return nil, fmt.Errorf("OVERLAP_RATIO must be in [0, 1)")
	}

	cfg.ForceSplitSentences, err = getEnvBool("FORCE_SPLIT_SENTENCES", true)
	if err != nil {
		return nil, err
	}

	cfg.DistanceThreshold, err = getEnvFloat("DISTANCE_THRESHOLD", 0.35)
	if err != nil {
		return nil, err
	}
	cfg.VectorWeight, err = getEnvFloat("VECTOR_WEIGHT", 0.7)
	if err != nil {
		return nil, err
	}
	cfg.KeywordWeight, err = getEnvFloat("KEYWORD_WEIGHT", 1.0)
	if err != nil {
		return nil, err
	}
	cfg.MaxKeywordScore, err = getEnvFloat("MAX_KEYWORD_SCORE", 0.5)
	if err != nil {
		return nil, err
	}
	cfg.MinCombinedScore, err = getEnvFloat("MIN_COMBINED_SCORE", 0.3)
	if err != nil {
		return nil, err
	}

	cfg.ContextMaxTokens, err = getEnvInt("CONTEXT_MAX_TOKENS", 2000)
	if err != nil {
		return nil, err
	}
	cfg.RelevanceThreshold, err = getEnvFloat("RELEVANCE_THRESHOLD", 0.7)
	if err != nil {
		return nil, err
	}
	cfg.DiversityWeight, err = getEnvFloat("DIVERSITY_WEIGHT", 0.3)
	if err != nil {
		return nil, err
	}
	cfg.HierarchyWeight, err = getEnvFloat("HIERARCHY_WEIGHT", 0.4)
	if err != nil {
		return nil, err
	}

	// Parse QDRANT_VECTOR_SIZE
	// Note: This must match the output vector size of the embeddings model.
	// If the vector size changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	// Create ./data directory if it doesn't exist (for future DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// parseLogLevel converts a level name to a slog.Level.
func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return parsed, nil
}
