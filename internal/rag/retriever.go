package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"memorag/internal/contextutil"
	"memorag/internal/storage"
	"memorag/internal/vectorstore"
)

const (
	// Hierarchy discount: top-level headings are broad, deeper ones specific.
	shallowestMultiplier = 0.9
	perLevelIncrement    = 0.02

	overlapScoreFactor   = 1.05
	firstPartScoreFactor = 1.10

	// Oversample the similarity query so dedup and score filtering still
	// leave enough candidates to fill the requested limit.
	fetchMultiplier = 4
)

// Retriever performs hybrid vector+keyword retrieval over indexed chunks.
type Retriever struct {
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
	cfg         RetrieverConfig
}

// NewRetriever creates a new hybrid retriever.
func NewRetriever(vectorStore vectorstore.VectorStore, collection string, chunkRepo storage.ChunkStore, cfg RetrieverConfig) *Retriever {
	return &Retriever{
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
		cfg:         cfg,
	}
}

type sectionKey struct {
	filename    string
	headingPath string
	headingText string
}

// Retrieve returns up to limit scored candidates for the query embedding.
// When keywords are supplied, candidates are ranked by combined
// keyword+vector score and filtered by the minimum combined score; with no
// keywords the ordering is pure weighted-vector, identical to a vector-only
// search. Multi-part sections are reassembled into one passage.
func (r *Retriever) Retrieve(ctx context.Context, queryVec []float32, keywords []string, limit int) ([]ScoredCandidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}

	hits, err := r.vectorStore.Query(ctx, r.collection, queryVec, r.cfg.DistanceThreshold, limit*fetchMultiplier)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	cleaned := cleanKeywords(keywords)

	candidates := make([]ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		cand, err := candidateFromHit(hit)
		if err != nil {
			logger.WarnContext(ctx, "skipping malformed candidate", "point_id", hit.PointID, "error", err)
			continue
		}

		weighted := float64(1-hit.Distance) * hierarchyMultiplier(cand.HeadingLevel)
		if cand.HasOverlap {
			weighted *= overlapScoreFactor
		}
		if cand.TotalParts > 1 && cand.PartNumber == 1 {
			weighted *= firstPartScoreFactor
		}

		if len(cleaned) == 0 {
			cand.CombinedScore = r.cfg.VectorWeight * weighted
		} else {
			cand.KeywordScore = r.keywordScore(cand.Content, cleaned)
			cand.CombinedScore = cand.KeywordScore + r.cfg.VectorWeight*weighted
			if cand.CombinedScore < r.cfg.MinCombinedScore {
				continue
			}
		}

		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	// Keep the best-scoring representative per section.
	seen := make(map[sectionKey]bool, len(candidates))
	deduped := make([]ScoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		key := sectionKey{cand.Filename, cand.HeadingPath, cand.HeadingText}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, cand)
	}

	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	for i := range deduped {
		if deduped[i].TotalParts <= 1 {
			continue
		}
		if err := r.reassemble(ctx, &deduped[i]); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "hybrid retrieval completed",
		"hits", len(hits),
		"keywords", len(cleaned),
		"candidates", len(deduped),
	)
	return deduped, nil
}

// keywordScore returns the capped keyword contribution: the fraction of
// keywords occurring in content (case-insensitive substring), scaled by the
// keyword weight, zero when nothing matched.
func (r *Retriever) keywordScore(content string, keywords []string) float64 {
	lower := strings.ToLower(content)

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	score := float64(matched) / float64(len(keywords)) * r.cfg.KeywordWeight
	if score > r.cfg.MaxKeywordScore {
		score = r.cfg.MaxKeywordScore
	}
	return score
}

func hierarchyMultiplier(level int) float64 {
	if level < 1 {
		return 1.0
	}
	m := shallowestMultiplier + perLevelIncrement*float64(level-1)
	if m > 1.0 {
		return 1.0
	}
	return m
}

func cleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	return cleaned
}

func candidateFromHit(hit vectorstore.Hit) (ScoredCandidate, error) {
	content := metaString(hit.Meta, "content")
	if content == "" {
		return ScoredCandidate{}, fmt.Errorf("%w: content", ErrMalformedCandidate)
	}
	filename := metaString(hit.Meta, "filename")
	if filename == "" {
		return ScoredCandidate{}, fmt.Errorf("%w: filename", ErrMalformedCandidate)
	}

	partNumber := metaInt(hit.Meta, "part_number")
	totalParts := metaInt(hit.Meta, "total_parts")
	if totalParts > 1 && partNumber < 1 {
		return ScoredCandidate{}, fmt.Errorf("%w: part_number", ErrMalformedCandidate)
	}
	if totalParts < 1 {
		totalParts = 1
	}
	if partNumber < 1 {
		partNumber = 1
	}

	return ScoredCandidate{
		ChunkID:      hit.PointID,
		Content:      content,
		Filename:     filename,
		HeadingPath:  metaString(hit.Meta, "heading_path"),
		HeadingLevel: metaInt(hit.Meta, "heading_level"),
		HeadingText:  metaString(hit.Meta, "heading_text"),
		PartNumber:   partNumber,
		TotalParts:   totalParts,
		HasOverlap:   metaBool(hit.Meta, "has_overlap"),
		BaseDistance: hit.Distance,
	}, nil
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func metaBool(meta map[string]any, key string) bool {
	b, _ := meta[key].(bool)
	return b
}
