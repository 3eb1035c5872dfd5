package rag

import (
	"context"
	"fmt"
	"strings"

	"memorag/internal/storage"
	"memorag/internal/textutil"
)

const overlapSimilarity = 0.8

// reassemble replaces a multi-part candidate's content with the full section
// text, stitched from all sibling parts in part order.
func (r *Retriever) reassemble(ctx context.Context, cand *ScoredCandidate) error {
	parts, err := r.chunkRepo.ListParts(ctx, cand.Filename, cand.HeadingPath, cand.HeadingText)
	if err != nil {
		return fmt.Errorf("failed to fetch sibling parts: %w", err)
	}
	if len(parts) == 0 {
		return nil
	}
	cand.Content = AssembleParts(parts)
	return nil
}

// AssembleParts joins section parts into one passage. Overlap text repeated
// at part boundaries is stripped so no sentence is duplicated.
func AssembleParts(parts []*storage.ChunkRecord) string {
	assembled := parts[0].Content
	for _, part := range parts[1:] {
		content := part.Content
		if part.HasOverlap {
			content = stripOverlap(assembled, content)
		}
		if content == "" {
			continue
		}
		assembled += "\n\n" + content
	}
	return assembled
}

// stripOverlap removes the overlap prefix a part carries from its
// predecessor. Marked overlap ("..." prefix) is cut through its first blank
// line; otherwise leading sentences too similar to the assembled tail are
// dropped.
func stripOverlap(assembled, content string) string {
	if strings.HasPrefix(content, "...") {
		if idx := strings.Index(content, "\n\n"); idx >= 0 {
			return strings.TrimSpace(content[idx+2:])
		}
	}

	sentences := textutil.SplitSentences(content)
	tail := tailSentences(assembled, 5)

	drop := 0
	for _, sentence := range sentences {
		if !similarToAny(sentence, tail) {
			break
		}
		drop++
	}
	return strings.TrimSpace(strings.Join(sentences[drop:], "\n\n"))
}

func tailSentences(text string, n int) []string {
	sentences := textutil.SplitSentences(text)
	if len(sentences) > n {
		sentences = sentences[len(sentences)-n:]
	}
	return sentences
}

func similarToAny(sentence string, others []string) bool {
	for _, other := range others {
		if sentence == other || jaccard(sentence, other) >= overlapSimilarity {
			return true
		}
	}
	return false
}

// jaccard computes word-set similarity between two sentences.
func jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		set[word] = true
	}
	return set
}
