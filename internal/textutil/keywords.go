package textutil

import "strings"

// punctuation stripped before keyword extraction, including Japanese brackets.
const keywordNoise = "「」『』()（）【】［］[]{}/\\.,、。｡！？!?:;\"'"

// ExtractKeywords breaks text into search keywords: punctuation is dropped,
// tokens split on whitespace and on script boundaries (a CJK run and a Latin
// run become separate keywords), and duplicates are removed preserving first
// occurrence order.
func ExtractKeywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(keywordNoise, r) {
			return ' '
		}
		return r
	}, text)

	var tokens []string
	var current strings.Builder
	currentCJK := false
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range cleaned {
		switch {
		case r == ' ' || r == '\n' || r == '\r' || r == '\t' || r == '　':
			flush()
		case isCJK(r) != currentCJK:
			flush()
			currentCJK = isCJK(r)
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	seen := make(map[string]struct{}, len(tokens))
	result := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		result = append(result, tok)
	}
	return result
}
