package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks memorag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Insert inserts a single chunk. The chunk.ID must be set (UUID) before calling.
	Insert(ctx context.Context, chunk *ChunkRecord) error
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// ListParts returns all parts of one section, ordered by part_number.
	ListParts(ctx context.Context, filename, headingPath, headingText string) ([]*ChunkRecord, error)
	// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// DeleteByDocument deletes all chunks for a document ID.
	DeleteByDocument(ctx context.Context, documentID string) error
}

const chunkColumns = `id, document_id, chunk_index, content, filename,
	heading_path, heading_level, heading_text, part_number, total_parts,
	has_overlap, section_sequence`

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Insert inserts a single chunk.
func (r *ChunkRepo) Insert(ctx context.Context, chunk *ChunkRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chunks (`+chunkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.Content, chunk.Filename,
		chunk.HeadingPath, chunk.HeadingLevel, chunk.HeadingText, chunk.PartNumber,
		chunk.TotalParts, chunk.HasOverlap, chunk.SectionSequence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)

	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}
	return chunk, nil
}

// ListParts returns every part of one section (same filename, heading path
// and heading text) ordered by part number, for passage reassembly.
func (r *ChunkRepo) ListParts(ctx context.Context, filename, headingPath, headingText string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks
		WHERE filename = ? AND heading_path = ? AND heading_text = ?
		ORDER BY part_number`,
		filename, headingPath, headingText,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk parts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var parts []*ChunkRecord
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk part: %w", err)
		}
		parts = append(parts, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return parts, nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// DeleteByDocument deletes all chunks for a document ID.
// Used when re-ingesting a document to remove old chunks first.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := row.Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.ChunkIndex, &chunk.Content, &chunk.Filename,
		&chunk.HeadingPath, &chunk.HeadingLevel, &chunk.HeadingText, &chunk.PartNumber,
		&chunk.TotalParts, &chunk.HasOverlap, &chunk.SectionSequence,
	)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
