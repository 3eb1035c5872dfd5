package storage

import (
	"context"
	"errors"
	"testing"
)

func newTestDB(t *testing.T) *ChunkRepo {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := New(tmpDir + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	docRepo := NewDocumentRepo(db)
	doc := &DocumentRecord{ID: "doc-1", Filename: "guide.md", Title: "Guide", Hash: "hash"}
	if err := docRepo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	return NewChunkRepo(db)
}

func testChunk(id string, index, part, total int) *ChunkRecord {
	return &ChunkRecord{
		ID:              id,
		DocumentID:      "doc-1",
		ChunkIndex:      index,
		Content:         "content " + id,
		Filename:        "guide.md",
		HeadingPath:     "# Guide > ## Setup",
		HeadingLevel:    2,
		HeadingText:     "Setup",
		PartNumber:      part,
		TotalParts:      total,
		HasOverlap:      part > 1,
		SectionSequence: index + 1,
	}
}

func TestChunkRepo_InsertAndGetByID(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	want := testChunk("c-1", 0, 1, 2)
	if err := repo.Insert(ctx, want); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != want.Content || got.HeadingPath != want.HeadingPath ||
		got.PartNumber != want.PartNumber || got.TotalParts != want.TotalParts ||
		got.HasOverlap != want.HasOverlap || got.SectionSequence != want.SectionSequence {
		t.Errorf("GetByID() = %+v, want %+v", got, want)
	}
}

func TestChunkRepo_GetByIDNotFound(t *testing.T) {
	repo := newTestDB(t)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_ListPartsOrdered(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	// Insert out of order; ListParts must return them by part_number.
	for _, c := range []*ChunkRecord{
		testChunk("c-3", 2, 3, 3),
		testChunk("c-1", 0, 1, 3),
		testChunk("c-2", 1, 2, 3),
	} {
		if err := repo.Insert(ctx, c); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	parts, err := repo.ListParts(ctx, "guide.md", "# Guide > ## Setup", "Setup")
	if err != nil {
		t.Fatalf("ListParts() error = %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("ListParts() = %d parts, want 3", len(parts))
	}
	for i, p := range parts {
		if p.PartNumber != i+1 {
			t.Errorf("parts[%d].PartNumber = %d, want %d", i, p.PartNumber, i+1)
		}
	}
}

func TestChunkRepo_ListPartsFiltersSection(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	a := testChunk("c-1", 0, 1, 1)
	b := testChunk("c-2", 1, 1, 1)
	b.HeadingPath = "# Guide > ## Other"
	b.HeadingText = "Other"
	for _, c := range []*ChunkRecord{a, b} {
		if err := repo.Insert(ctx, c); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	parts, err := repo.ListParts(ctx, "guide.md", "# Guide > ## Setup", "Setup")
	if err != nil {
		t.Fatalf("ListParts() error = %v", err)
	}
	if len(parts) != 1 || parts[0].ID != "c-1" {
		t.Errorf("ListParts() should only match the requested section, got %d parts", len(parts))
	}
}

func TestChunkRepo_DeleteByDocument(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, testChunk("c-1", 0, 1, 1)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no chunk IDs after delete, got %v", ids)
	}
}
