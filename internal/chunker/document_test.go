package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestChunkDocumentUnsupportedFormat(t *testing.T) {
	chunks, err := ChunkDocument("%PDF-1.4 binary soup", "manual.pdf", DefaultConfig())

	if chunks != nil {
		t.Errorf("no partial chunks expected, got %d", len(chunks))
	}
	var formatErr *UnsupportedFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if formatErr.Ext != "pdf" {
		t.Errorf("error extension = %q, want pdf", formatErr.Ext)
	}
}

func TestChunkDocumentEmpty(t *testing.T) {
	for _, filename := range []string{"empty.txt", "empty.md"} {
		chunks, err := ChunkDocument("", filename, DefaultConfig())
		if err != nil {
			t.Errorf("ChunkDocument(%q) unexpected error: %v", filename, err)
		}
		if len(chunks) != 0 {
			t.Errorf("ChunkDocument(%q) = %d chunks, want 0", filename, len(chunks))
		}
	}
}

func TestChunkDocumentPlainTextBudget(t *testing.T) {
	// 2600 characters without headings: one untitled section, at least three
	// chunks, none far beyond budget + overlap.
	var b strings.Builder
	for b.Len() < 2600 {
		b.WriteString("This is a filler sentence that keeps going for a while. ")
	}
	text := b.String()[:2600]

	cfg := Config{SizeBudget: 1000, OverlapRatio: 0.15, ForceSplitSentences: true}
	chunks, err := ChunkDocument(text, "notes.txt", cfg)
	if err != nil {
		t.Fatalf("ChunkDocument() error: %v", err)
	}

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for 2600 chars at budget 1000, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.HeadingText != UntitledHeading {
			t.Errorf("chunk %d heading = %q, want untitled", i, c.HeadingText)
		}
		limit := cfg.SizeBudget + int(float64(cfg.SizeBudget)*cfg.OverlapRatio) + 8
		if n := len([]rune(c.Content)); n > limit {
			t.Errorf("chunk %d has %d runes, above budget+overlap limit %d", i, n, limit)
		}
	}
}

func TestChunkDocumentMarkdownBudgetCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Heading\n\n")
	for i := 0; i < 60; i++ {
		b.WriteString("A markdown paragraph sentence that adds length to the section. ")
	}

	chunks, err := ChunkDocument(b.String(), "doc.md", Config{SizeBudget: 5000, OverlapRatio: 0.15, ForceSplitSentences: true})
	if err != nil {
		t.Fatalf("ChunkDocument() error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("markdown budget should cap at %d and split the section, got %d chunks", markdownBudgetCap, len(chunks))
	}
	for i, c := range chunks {
		limit := markdownBudgetCap + int(float64(markdownBudgetCap)*0.15) + 8
		if n := len([]rune(c.Content)); n > limit {
			t.Errorf("chunk %d has %d runes, markdown cap not applied", i, n)
		}
	}
}

func TestChunkDocumentHierarchyScenario(t *testing.T) {
	chunks, err := ChunkDocument("# A\ncontent A\n\n## B\ncontent B", "doc.md", DefaultConfig())
	if err != nil {
		t.Fatalf("ChunkDocument() error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].HeadingLevel != 1 || chunks[0].HeadingText != "A" {
		t.Errorf("chunk 0 = level %d %q, want level 1 A", chunks[0].HeadingLevel, chunks[0].HeadingText)
	}
	if chunks[1].HeadingLevel != 2 || chunks[1].HeadingText != "B" {
		t.Errorf("chunk 1 = level %d %q, want level 2 B", chunks[1].HeadingLevel, chunks[1].HeadingText)
	}
	if got := RenderPath(chunks[1].HeadingPath); got != "# A > ## B" {
		t.Errorf("chunk 1 path = %q, want # A > ## B", got)
	}
	if chunks[0].Filename != "doc.md" {
		t.Errorf("filename = %q, want doc.md", chunks[0].Filename)
	}
}

func TestChunkDocumentUppercaseExtension(t *testing.T) {
	chunks, err := ChunkDocument("# A\ncontent", "DOC.MD", DefaultConfig())
	if err != nil {
		t.Fatalf("extension matching should be case-insensitive: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}
