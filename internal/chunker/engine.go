package chunker

import (
	"regexp"
	"strings"

	"memorag/internal/textutil"
)

// Config controls size-based splitting.
type Config struct {
	// SizeBudget is the chunk budget in runes.
	SizeBudget int
	// OverlapRatio is the fraction of the budget duplicated across chunk
	// boundaries, in [0, 1).
	OverlapRatio float64
	// ForceSplitSentences cuts a single sentence longer than the budget at
	// rune boundaries. When false the sentence is kept whole even though it
	// exceeds the budget.
	ForceSplitSentences bool
}

// DefaultConfig mirrors the ingestion defaults: 1000-rune budget with 15%
// overlap, force-cutting oversized sentences.
func DefaultConfig() Config {
	return Config{
		SizeBudget:          1000,
		OverlapRatio:        0.15,
		ForceSplitSentences: true,
	}
}

// Engine turns hierarchical sections into size-bounded chunks with
// sentence-boundary-preferred splitting and inter-chunk overlap.
type Engine struct {
	cfg Config
}

// NewEngine creates a chunk engine with the given config.
func NewEngine(cfg Config) *Engine {
	if cfg.SizeBudget <= 0 {
		cfg.SizeBudget = DefaultConfig().SizeBudget
	}
	if cfg.OverlapRatio < 0 || cfg.OverlapRatio >= 1 {
		cfg.OverlapRatio = DefaultConfig().OverlapRatio
	}
	return &Engine{cfg: cfg}
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// ChunkSections converts sections into ordered chunks. Sections within the
// budget become a single chunk widened with overlap context from the
// neighbouring sections; longer sections are split by paragraph, then by
// sentence, with overlap pulled from the tail of the previous emitted chunk.
// Empty-content sections are skipped.
func (e *Engine) ChunkSections(sections []Section, filename string) []Chunk {
	overlapSize := int(float64(e.cfg.SizeBudget) * e.cfg.OverlapRatio)
	sequences := make(map[string]int)

	var chunks []Chunk
	for i, sec := range sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}

		var parts []Chunk
		if len([]rune(sec.Content)) <= e.cfg.SizeBudget {
			content := addNeighbourOverlap(sec.Content, sections, i, overlapSize)
			parts = []Chunk{{
				Content:    content,
				PartNumber: 1,
				TotalParts: 1,
				HasOverlap: content != sec.Content,
			}}
		} else {
			parts = e.splitSection(sec.Content, overlapSize)
		}

		key := strings.Join(sec.Path, "\x00")
		for p := range parts {
			sequences[key]++
			parts[p].HeadingPath = sec.Path
			parts[p].HeadingLevel = sec.Level
			parts[p].HeadingText = sec.HeadingText()
			parts[p].Filename = filename
			parts[p].SectionSequence = sequences[key]
		}
		chunks = append(chunks, parts...)
	}
	return chunks
}

// splitSection splits one over-budget section into parts, preferring
// sentence boundaries. TotalParts is set on every part once the section is
// fully split.
func (e *Engine) splitSection(content string, overlapSize int) []Chunk {
	adjusted := e.cfg.SizeBudget - overlapSize

	var parts []Chunk
	var current string

	emit := func(text string, withOverlap bool) {
		hasOverlap := false
		if withOverlap {
			text, hasOverlap = addSentenceOverlap(text, parts, overlapSize)
		}
		parts = append(parts, Chunk{
			Content:    text,
			PartNumber: len(parts) + 1,
			HasOverlap: hasOverlap,
		})
	}

	for _, paragraph := range paragraphSplit.Split(content, -1) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		for sentence := range textutil.Sentences(paragraph) {
			potential := sentence
			if current != "" {
				potential = current + "\n\n" + sentence
			}
			if len([]rune(potential)) <= adjusted {
				current = potential
				continue
			}

			if strings.TrimSpace(current) != "" {
				emit(strings.TrimSpace(current), true)
			}

			if len([]rune(sentence)) > adjusted {
				if e.cfg.ForceSplitSentences {
					for _, piece := range forceSplit(sentence, adjusted) {
						emit(piece, false)
					}
				} else {
					emit(sentence, false)
				}
				current = ""
			} else {
				current = sentence
			}
		}
	}

	if strings.TrimSpace(current) != "" {
		emit(strings.TrimSpace(current), true)
	}

	for p := range parts {
		parts[p].TotalParts = len(parts)
	}
	return parts
}

// addSentenceOverlap prepends the longest sentence suffix of the previous
// part that fits in overlapSize, wrapped with the "..." continuation marker.
func addSentenceOverlap(content string, previous []Chunk, overlapSize int) (string, bool) {
	if len(previous) == 0 || overlapSize <= 0 {
		return content, false
	}

	sentences := textutil.SplitSentences(previous[len(previous)-1].Content)
	var overlap string
	for i := len(sentences) - 1; i >= 0; i-- {
		candidate := strings.Join(sentences[i:], "")
		if len([]rune(candidate)) <= overlapSize {
			overlap = candidate
			break
		}
	}
	if strings.TrimSpace(overlap) == "" {
		return content, false
	}
	return "..." + overlap + "\n\n" + content, true
}

// addNeighbourOverlap widens a within-budget section with the tail of the
// previous section and the head of the next, each wrapped with "..." markers.
func addNeighbourOverlap(content string, sections []Section, index, overlapSize int) string {
	if overlapSize <= 0 {
		return content
	}
	result := content

	if index > 0 {
		prev := []rune(sections[index-1].Content)
		if len(prev) > overlapSize {
			prev = prev[len(prev)-overlapSize:]
		}
		if tail := string(prev); strings.TrimSpace(tail) != "" {
			result = "..." + tail + "\n\n" + result
		}
	}
	if index < len(sections)-1 {
		next := []rune(sections[index+1].Content)
		if len(next) > overlapSize {
			next = next[:overlapSize]
		}
		if head := string(next); strings.TrimSpace(head) != "" {
			result = result + "\n\n" + head + "..."
		}
	}
	return result
}

// forceSplit cuts text into pieces of at most maxRunes runes.
func forceSplit(text string, maxRunes int) []string {
	runes := []rune(text)
	var pieces []string
	for start := 0; start < len(runes); start += maxRunes {
		end := start + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
