package rag

import "errors"

// ErrMalformedCandidate indicates a stored row is missing metadata required
// for scoring or reassembly. Such rows are skipped, never aborting retrieval.
var ErrMalformedCandidate = errors.New("candidate missing required metadata")

// ScoredCandidate is a retrieval candidate with its scoring breakdown.
type ScoredCandidate struct {
	// ChunkID is the stable chunk identifier.
	ChunkID string `json:"chunk_id"`
	// Content is the candidate text, reassembled across parts when the
	// source section was split.
	Content string `json:"content"`
	// Filename is the source document filename.
	Filename string `json:"filename"`
	// HeadingPath is the rendered heading path (e.g., "# Overview > ## Details").
	HeadingPath string `json:"heading_path"`
	// HeadingLevel is the heading depth (1-6), 0 when the document had no headings.
	HeadingLevel int `json:"heading_level"`
	// HeadingText is the innermost heading text.
	HeadingText string `json:"heading_text"`
	// PartNumber and TotalParts describe the candidate's position within
	// its section before reassembly.
	PartNumber int  `json:"part_number"`
	TotalParts int  `json:"total_parts"`
	HasOverlap bool `json:"has_overlap"`
	// BaseDistance is the raw cosine distance from the similarity query.
	BaseDistance float32 `json:"base_distance"`
	// KeywordScore is the capped keyword match score (0 when no keywords matched).
	KeywordScore float64 `json:"keyword_score,omitempty"`
	// CombinedScore is the final ranking score.
	CombinedScore float64 `json:"combined_score"`
}

// SelectedContext is a context passage accepted into the token budget.
type SelectedContext struct {
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
	HierarchyLevel int     `json:"hierarchy_level"`
	TokenCount     int     `json:"token_count"`
}

// RetrieverConfig holds hybrid retrieval tunables.
type RetrieverConfig struct {
	// DistanceThreshold filters similarity hits by cosine distance. Zero disables.
	DistanceThreshold float32
	// VectorWeight scales the vector score in the combined score.
	VectorWeight float64
	// KeywordWeight scales the keyword match ratio.
	KeywordWeight float64
	// MaxKeywordScore caps the keyword contribution.
	MaxKeywordScore float64
	// MinCombinedScore drops weak candidates in keyword mode.
	MinCombinedScore float64
}

// DefaultRetrieverConfig returns the standard retrieval tuning.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		DistanceThreshold: 0.35,
		VectorWeight:      0.7,
		KeywordWeight:     1.0,
		MaxKeywordScore:   0.5,
		MinCombinedScore:  0.3,
	}
}

// ContextConfig holds context selection tunables.
type ContextConfig struct {
	// MaxTokens is the cumulative estimated token budget.
	MaxTokens int
	// RelevanceThreshold is the minimum adjusted score to accept.
	RelevanceThreshold float64
	// DiversityWeight is the probability of accepting a second passage from
	// an already-used section group.
	DiversityWeight float64
	// HierarchyWeight scales the bonus for deep, specific headings.
	HierarchyWeight float64
}

// DefaultContextConfig returns the standard selection tuning.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		MaxTokens:          2000,
		RelevanceThreshold: 0.7,
		DiversityWeight:    0.3,
		HierarchyWeight:    0.4,
	}
}
