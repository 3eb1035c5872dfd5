package rag

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"memorag/internal/textutil"
)

func TestSelector_Select_OrdersByAdjustedScore(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	candidates := []ScoredCandidate{
		{Content: "deep section", Filename: "a.md", HeadingText: "Deep", HeadingLevel: 6, CombinedScore: 0.8},
		{Content: "shallow section", Filename: "b.md", HeadingText: "Shallow", HeadingLevel: 1, CombinedScore: 0.8},
	}

	selected := selector.Select(candidates, DefaultContextConfig())
	if len(selected) != 2 {
		t.Fatalf("Select() returned %d contexts, want 2", len(selected))
	}
	// Equal combined scores: the shallower heading gets the larger bonus.
	if selected[0].Content != "shallow section" {
		t.Errorf("Select() first = %q, want shallow section", selected[0].Content)
	}
	if selected[0].HierarchyLevel != 1 {
		t.Errorf("Select() hierarchy level = %d, want 1", selected[0].HierarchyLevel)
	}
}

func TestSelector_Select_RelevanceThreshold(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	candidates := []ScoredCandidate{
		{Content: "strong", Filename: "a.md", HeadingText: "A", CombinedScore: 0.9},
		{Content: "weak", Filename: "b.md", HeadingText: "B", CombinedScore: 0.1},
	}

	selected := selector.Select(candidates, DefaultContextConfig())
	if len(selected) != 1 {
		t.Fatalf("Select() returned %d contexts, want 1", len(selected))
	}
	if selected[0].Content != "strong" {
		t.Errorf("Select() = %q, want strong", selected[0].Content)
	}
}

func TestSelector_Select_TokenBudget(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	big := strings.Repeat("word ", 300)
	candidates := []ScoredCandidate{
		{Content: big, Filename: "a.md", HeadingText: "A", CombinedScore: 0.95},
		{Content: "short text", Filename: "b.md", HeadingText: "B", CombinedScore: 0.9},
	}

	cfg := DefaultContextConfig()
	cfg.MaxTokens = 100

	selected := selector.Select(candidates, cfg)
	if len(selected) != 1 {
		t.Fatalf("Select() returned %d contexts, want 1", len(selected))
	}
	// The oversized candidate is skipped, the smaller one still fits.
	if selected[0].Content != "short text" {
		t.Errorf("Select() = %q, want short text", selected[0].Content)
	}

	total := 0
	for _, sc := range selected {
		total += sc.TokenCount
	}
	if total > cfg.MaxTokens {
		t.Errorf("Select() total tokens = %d, exceeds budget %d", total, cfg.MaxTokens)
	}
}

func TestSelector_Select_CapsAtFive(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	var candidates []ScoredCandidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, ScoredCandidate{
			Content:       fmt.Sprintf("candidate %d", i),
			Filename:      fmt.Sprintf("f%d.md", i),
			HeadingText:   fmt.Sprintf("H%d", i),
			CombinedScore: 0.9,
		})
	}

	selected := selector.Select(candidates, DefaultContextConfig())
	if len(selected) != 5 {
		t.Errorf("Select() returned %d contexts, want 5", len(selected))
	}
}

func TestSelector_Select_Diversity(t *testing.T) {
	candidates := []ScoredCandidate{
		{Content: "first from section", Filename: "a.md", HeadingText: "Same", CombinedScore: 0.95},
		{Content: "second from section", Filename: "a.md", HeadingText: "Same", CombinedScore: 0.9},
	}

	// rand above the diversity weight: the repeat group is skipped.
	strict := NewSelectorWithRand(func() float64 { return 0.99 })
	selected := strict.Select(candidates, DefaultContextConfig())
	if len(selected) != 1 {
		t.Fatalf("Select() returned %d contexts, want 1 with strict diversity", len(selected))
	}

	// rand below the diversity weight: the repeat is allowed through.
	lenient := NewSelectorWithRand(func() float64 { return 0.1 })
	selected = lenient.Select(candidates, DefaultContextConfig())
	if len(selected) != 2 {
		t.Errorf("Select() returned %d contexts, want 2 with lenient diversity", len(selected))
	}
}

func TestSelector_Select_BonusesForOverlapAndFirstPart(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	candidates := []ScoredCandidate{
		{Content: "plain", Filename: "a.md", HeadingText: "A", CombinedScore: 0.8},
		{Content: "boosted", Filename: "b.md", HeadingText: "B", CombinedScore: 0.8, HasOverlap: true, PartNumber: 1, TotalParts: 3},
	}

	selected := selector.Select(candidates, DefaultContextConfig())
	if len(selected) != 2 {
		t.Fatalf("Select() returned %d contexts, want 2", len(selected))
	}
	if selected[0].Content != "boosted" {
		t.Errorf("Select() first = %q, want boosted", selected[0].Content)
	}
	wantDelta := selectorOverlapBonus + selectorFirstPartBonus
	if got := selected[0].RelevanceScore - selected[1].RelevanceScore; math.Abs(got-wantDelta) > 1e-9 {
		t.Errorf("Select() score delta = %v, want %v", got, wantDelta)
	}
}

func TestSelector_Select_TokenCountMatchesEstimator(t *testing.T) {
	selector := NewSelectorWithRand(func() float64 { return 0 })

	content := "ベクトル検索の説明です。"
	candidates := []ScoredCandidate{
		{Content: content, Filename: "a.md", HeadingText: "A", CombinedScore: 0.9},
	}

	selected := selector.Select(candidates, DefaultContextConfig())
	if len(selected) != 1 {
		t.Fatalf("Select() returned %d contexts, want 1", len(selected))
	}
	if want := textutil.EstimateTokens(content); selected[0].TokenCount != want {
		t.Errorf("Select() token count = %d, want %d", selected[0].TokenCount, want)
	}
}

func TestSelector_Select_Empty(t *testing.T) {
	selector := NewSelector()
	if got := selector.Select(nil, DefaultContextConfig()); len(got) != 0 {
		t.Errorf("Select() returned %d contexts for no candidates, want 0", len(got))
	}
}
