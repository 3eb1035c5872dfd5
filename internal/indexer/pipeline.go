package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"memorag/internal/chunker"
	"memorag/internal/contextutil"
	"memorag/internal/llm"
	"memorag/internal/storage"
	"memorag/internal/vectorstore"
)

const (
	embedBatchSize   = 16
	embedConcurrency = 4
)

// Pipeline orchestrates document ingestion into SQLite and Qdrant.
type Pipeline struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    *llm.EmbeddingsClient
	vectorStore vectorstore.VectorStore
	collection  string
	chunkCfg    chunker.Config
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkCfg chunker.Config,
) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkCfg:    chunkCfg,
	}
}

// IngestFile ingests a single document file.
// Unchanged files (matching content hash) are skipped. Re-ingesting a changed
// file replaces its previous chunks in both stores.
func (p *Pipeline) IngestFile(ctx context.Context, path string) error {
	_, err := p.ingestFile(ctx, path)
	return err
}

// ingestFile reports whether the file was actually ingested; false with a
// nil error means the content hash was unchanged.
func (p *Pipeline) ingestFile(ctx context.Context, path string) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	filename := filepath.Base(path)
	hash := sha256.Sum256(content)
	hashHex := fmt.Sprintf("%x", hash)

	existing, err := p.docRepo.GetByFilename(ctx, filename)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged file", "filename", filename, "hash", hashHex)
		return false, nil
	}

	chunks, err := chunker.ChunkDocument(string(content), filename, p.chunkCfg)
	if err != nil {
		return false, fmt.Errorf("failed to chunk document: %w", err)
	}

	title := chunker.ExtractTitle(content, filename)

	docID := uuid.New().String()
	if existing != nil {
		docID = existing.ID
	}

	record := &storage.DocumentRecord{
		ID:       docID,
		Filename: filename,
		Title:    title,
		Hash:     hashHex,
	}
	if err := p.docRepo.Upsert(ctx, record); err != nil {
		return false, fmt.Errorf("failed to upsert document: %w", err)
	}

	if existing != nil {
		if err := p.removeOldChunks(ctx, docID); err != nil {
			return false, err
		}
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks generated", "filename", filename)
		return true, nil
	}

	embeddings, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return false, err
	}

	chunkRecords := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))

	for i, chunk := range chunks {
		chunkID := uuid.New().String()
		headingPath := chunker.RenderPath(chunk.HeadingPath)

		chunkRecords[i] = &storage.ChunkRecord{
			ID:              chunkID,
			DocumentID:      docID,
			ChunkIndex:      i,
			Content:         chunk.Content,
			Filename:        chunk.Filename,
			HeadingPath:     headingPath,
			HeadingLevel:    chunk.HeadingLevel,
			HeadingText:     chunk.HeadingText,
			PartNumber:      chunk.PartNumber,
			TotalParts:      chunk.TotalParts,
			HasOverlap:      chunk.HasOverlap,
			SectionSequence: chunk.SectionSequence,
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"content":          chunk.Content,
				"filename":         chunk.Filename,
				"heading_path":     headingPath,
				"heading_level":    chunk.HeadingLevel,
				"heading_text":     chunk.HeadingText,
				"part_number":      chunk.PartNumber,
				"total_parts":      chunk.TotalParts,
				"has_overlap":      chunk.HasOverlap,
				"section_sequence": chunk.SectionSequence,
				"title":            title,
			},
		}
	}

	for _, chunkRecord := range chunkRecords {
		if err := p.chunkRepo.Insert(ctx, chunkRecord); err != nil {
			return false, fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return false, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "ingested document", "filename", filename, "chunks", len(chunks), "title", title)
	return true, nil
}

// embedChunks embeds chunk contents in bounded-concurrency batches.
// Batches are order-independent; each result lands in its own slot.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Content
			}

			vectors, err := p.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
			}

			copy(embeddings[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// removeOldChunks deletes a document's previous chunks from both stores.
func (p *Pipeline) removeOldChunks(ctx context.Context, docID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	oldChunkIDs, err := p.chunkRepo.ListIDsByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to list old chunk IDs: %w", err)
	}
	if len(oldChunkIDs) == 0 {
		return nil
	}

	if err := p.vectorStore.Delete(ctx, p.collection, oldChunkIDs); err != nil {
		logger.WarnContext(ctx, "failed to delete old chunks from Qdrant", "error", err, "count", len(oldChunkIDs))
		// Continue anyway - we'll overwrite with new chunks
	}

	if err := p.chunkRepo.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete old chunks from SQLite: %w", err)
	}
	return nil
}
