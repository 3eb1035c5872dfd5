package rag

import (
	"math/rand/v2"
	"sort"

	"memorag/internal/textutil"
)

const (
	maxSelectedContexts = 5

	selectorOverlapBonus   = 0.1
	selectorFirstPartBonus = 0.15
)

// Selector picks context passages under a token budget, favoring relevant,
// specific and diverse sections.
type Selector struct {
	randFloat func() float64
}

// NewSelector creates a selector with the default random source.
func NewSelector() *Selector {
	return &Selector{randFloat: rand.Float64}
}

// NewSelectorWithRand creates a selector with an injected random source.
func NewSelectorWithRand(randFloat func() float64) *Selector {
	return &Selector{randFloat: randFloat}
}

type scoredEntry struct {
	cand   ScoredCandidate
	score  float64
	tokens int
}

// Select greedily accepts candidates in descending adjusted-score order
// while the cumulative token estimate stays within the budget, the score
// stays above the relevance threshold, and a probabilistic diversity check
// passes for sections already represented. At most 5 contexts are returned.
func (s *Selector) Select(candidates []ScoredCandidate, cfg ContextConfig) []SelectedContext {
	entries := make([]scoredEntry, 0, len(candidates))
	for _, cand := range candidates {
		score := cand.CombinedScore + hierarchyBonus(cand.HeadingLevel, cfg.HierarchyWeight)
		if cand.HasOverlap {
			score += selectorOverlapBonus
		}
		if cand.TotalParts > 1 && cand.PartNumber == 1 {
			score += selectorFirstPartBonus
		}
		entries = append(entries, scoredEntry{
			cand:   cand,
			score:  score,
			tokens: textutil.EstimateTokens(cand.Content),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	type groupKey struct {
		filename    string
		headingText string
	}
	used := make(map[groupKey]bool)

	var selected []SelectedContext
	totalTokens := 0
	for _, entry := range entries {
		if len(selected) >= maxSelectedContexts {
			break
		}
		if entry.score < cfg.RelevanceThreshold {
			break
		}
		if totalTokens+entry.tokens > cfg.MaxTokens {
			continue
		}

		key := groupKey{entry.cand.Filename, entry.cand.HeadingText}
		if used[key] && s.randFloat() > cfg.DiversityWeight {
			continue
		}

		used[key] = true
		totalTokens += entry.tokens
		selected = append(selected, SelectedContext{
			Content:        entry.cand.Content,
			RelevanceScore: entry.score,
			HierarchyLevel: entry.cand.HeadingLevel,
			TokenCount:     entry.tokens,
		})
	}

	return selected
}

// hierarchyBonus rewards shallower headings, scaled by weight. Level 1
// receives the full weight; missing headings get none.
func hierarchyBonus(level int, weight float64) float64 {
	if level < 1 {
		return 0
	}
	bonus := (7 - float64(level)) / 6 * weight
	if bonus < 0 {
		return 0
	}
	return bonus
}
