package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord represents an ingested document in the database.
type DocumentRecord struct {
	ID        string // UUID
	Filename  string // Original filename, unique
	Title     string // Extracted document title
	Hash      string // SHA256 hex string of the document content
	CreatedAt time.Time
}

// ChunkRecord represents a persisted chunk. Rows are immutable once written;
// re-ingesting a document replaces its rows wholesale.
type ChunkRecord struct {
	ID              string // UUID (same as vector store point ID)
	DocumentID      string // Foreign key to documents.id
	ChunkIndex      int    // Position within the document (starts at 0)
	Content         string
	Filename        string
	HeadingPath     string // Rendered path, e.g. "# Guide > ## Setup"
	HeadingLevel    int
	HeadingText     string
	PartNumber      int
	TotalParts      int
	HasOverlap      bool
	SectionSequence int
}
