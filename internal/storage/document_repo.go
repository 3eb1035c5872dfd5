package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks memorag/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Upsert inserts or updates a document record keyed by filename.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// GetByFilename gets a document by filename. Returns ErrNotFound if not found.
	GetByFilename(ctx context.Context, filename string) (*DocumentRecord, error)
	// ListAll returns all documents ordered by creation time.
	ListAll(ctx context.Context) ([]*DocumentRecord, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts or updates a document record keyed by filename.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, title, hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET title = excluded.title, hash = excluded.hash`,
		doc.ID, doc.Filename, doc.Title, doc.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByFilename gets a document by filename. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByFilename(ctx context.Context, filename string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, filename, title, hash, created_at FROM documents WHERE filename = ?",
		filename,
	).Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.Hash, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// ListAll returns all documents ordered by creation time.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, filename, title, hash, created_at FROM documents ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Title, &doc.Hash, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}
