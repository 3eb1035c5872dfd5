package textutil

import "unicode"

// isCJK reports whether r is a hiragana, katakana or CJK ideograph rune.
func isCJK(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	}
	return false
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// EstimateTokens approximates the token count of text for budget checks.
// CJK characters count one token each, a maximal run of Latin letters counts
// one token, and remaining non-whitespace characters count half a token with
// the half-token contribution rounded up. This is a budgeting heuristic, not
// a tokenizer: callers must not treat the result as exact.
func EstimateTokens(text string) int {
	var cjk, latinRuns, other int
	inLatinRun := false
	for _, r := range text {
		switch {
		case isCJK(r):
			cjk++
			inLatinRun = false
		case isLatinLetter(r):
			if !inLatinRun {
				latinRuns++
				inLatinRun = true
			}
		case unicode.IsSpace(r):
			inLatinRun = false
		default:
			other++
			inLatinRun = false
		}
	}
	return cjk + latinRuns + (other+1)/2
}
