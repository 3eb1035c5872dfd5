package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks memorag/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrStoreQuery marks similarity-search failures so callers can
// distinguish an unavailable store from their own errors.
var ErrStoreQuery = errors.New("vector store query failed")

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Hit is a similarity query result. Distance is cosine distance in [0, 2];
// results are ordered by ascending distance.
type Hit struct {
	PointID  string
	Distance float32
	Meta     map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query returns up to limit rows whose cosine distance to vector is at
	// most distanceThreshold, ordered by ascending distance. A threshold of
	// zero or less disables filtering.
	Query(ctx context.Context, collection string, vector []float32, distanceThreshold float32, limit int) ([]Hit, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
