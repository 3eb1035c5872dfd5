package textutil

import (
	"iter"
	"strings"
)

// terminal sentence punctuation, Japanese and Latin.
const sentenceTerminals = "。｡！？!?."

func isSentenceTerminal(r rune) bool {
	return strings.ContainsRune(sentenceTerminals, r)
}

// Sentences returns a lazy sequence of the sentences in text.
// A sentence ends after a run of terminal punctuation (。！？.!?).
// Pure-whitespace results are discarded. Text without any terminal
// punctuation yields itself as a single sentence, so the sequence is
// never empty for non-blank input. The sequence is restartable.
func Sentences(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		runes := []rune(text)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !isSentenceTerminal(runes[i]) {
				continue
			}
			// Extend through the full punctuation run ("..." stays together).
			if i+1 < len(runes) && isSentenceTerminal(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				if !yield(s) {
					return
				}
			}
			start = i + 1
		}
		if start < len(runes) {
			if s := strings.TrimSpace(string(runes[start:])); s != "" {
				yield(s)
			}
		}
	}
}

// SplitSentences is the eager form of Sentences.
func SplitSentences(text string) []string {
	var out []string
	for s := range Sentences(text) {
		out = append(out, s)
	}
	return out
}
