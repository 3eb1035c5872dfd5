package chunker

import (
	"fmt"
	"path/filepath"
	"strings"
)

// markdownBudgetCap keeps markdown chunks small enough for embedding models
// with short context windows, regardless of the configured budget.
const markdownBudgetCap = 500

// UnsupportedFormatError reports a file extension ingestion cannot handle.
// The extension check happens before any chunking work.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q", e.Ext)
}

// ChunkDocument is the ingestion entry point: it parses the document by
// extension and returns its ordered chunks. Plain text becomes a single
// untitled section; markdown is parsed into a heading hierarchy first. An
// unrecognised extension fails with UnsupportedFormatError and no partial
// chunks.
func ChunkDocument(content, filename string, cfg Config) ([]Chunk, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var sections []Section
	switch ext {
	case "txt":
		if strings.TrimSpace(content) != "" {
			sections = []Section{{
				Path:    []string{UntitledHeading},
				Level:   1,
				Content: strings.TrimSpace(content),
			}}
		}
	case "md":
		if cfg.SizeBudget > markdownBudgetCap {
			cfg.SizeBudget = markdownBudgetCap
		}
		sections = ParseHierarchy(content)
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}

	if len(sections) == 0 {
		return []Chunk{}, nil
	}
	return NewEngine(cfg).ChunkSections(sections, filepath.Base(filename)), nil
}
