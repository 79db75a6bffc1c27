package vocab

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountTerm counts non-overlapping occurrences of term in text where the match
// is not embedded in a longer word. Both arguments are expected to be lowercase.
func CountTerm(text, term string) int {
	if term == "" || len(term) > len(text) {
		return 0
	}

	count := 0
	offset := 0
	for {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return count
		}
		start := offset + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
		} else {
			offset = start + 1
		}
		if offset >= len(text) {
			return count
		}
	}
}

// ContainsTerm reports whether term occurs in text on word boundaries.
func ContainsTerm(text, term string) bool {
	return CountTerm(text, term) > 0
}

// MatchedTerms returns the terms that occur in text, in table order.
func MatchedTerms(text string, terms []string) []string {
	var matched []string
	for _, term := range terms {
		if ContainsTerm(text, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

func boundaryBefore(text string, start int) bool {
	if start <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
