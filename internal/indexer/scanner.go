package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"memorag/internal/contextutil"
)

// ScanDir walks dir and returns paths to every ingestible document file.
// Hidden directories are skipped.
func ScanDir(ctx context.Context, dir string) ([]string, error) {
	var paths []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// IngestDir scans dir and ingests every document found. Errors for
// individual files are logged but don't stop the run; the returned stats
// cover the whole run even when an error is also returned.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (IngestStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	paths, err := ScanDir(ctx, dir)
	if err != nil {
		return IngestStats{}, fmt.Errorf("failed to scan documents directory: %w", err)
	}

	logger.InfoContext(ctx, "starting ingestion", "dir", dir, "total_files", len(paths))

	stats := IngestStats{Scanned: len(paths)}
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		ingested, err := p.ingestFile(ctx, path)
		if err != nil {
			stats.Failed++
			logger.ErrorContext(ctx, "failed to ingest file", "path", path, "error", err)
			// Continue with next file
			continue
		}
		if ingested {
			stats.Ingested++
		} else {
			stats.Skipped++
		}
	}

	logger.InfoContext(ctx, "ingestion completed",
		"total_files", stats.Scanned,
		"ingested", stats.Ingested,
		"skipped", stats.Skipped,
		"errors", stats.Failed,
	)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("ingestion completed with %d errors", stats.Failed)
	}
	return stats, nil
}
