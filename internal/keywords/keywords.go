// Package keywords derives search keywords from a feature description and
// builds the bounded set of strategic search queries issued to the web source.
package keywords

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/evidence-engine/internal/vocab"
)

// DefaultMaxKeywords is the keyword cap used when callers pass a non-positive max.
const DefaultMaxKeywords = 8

// minTokenLength is the shortest token kept; shorter tokens are noise.
const minTokenLength = 3

// ErrEmptyInput is returned when the input text has no qualifying tokens.
// Callers treat it as a terminal input-validation failure.
var ErrEmptyInput = errors.New("no usable keywords in input text")

// Derive turns free text into an ordered keyword list: lowercase tokens longer
// than two characters, stopwords removed, deduplicated, sorted by descending
// length then ascending lexical order, truncated to max.
func Derive(text string, max int) ([]string, error) {
	return filter(tokenize(text), max)
}

// Normalize applies the same filtering as Derive to a caller-supplied keyword
// override. Each entry may itself contain several words.
func Normalize(override []string, max int) ([]string, error) {
	var tokens []string
	for _, entry := range override {
		tokens = append(tokens, tokenize(entry)...)
	}
	return filter(tokens, max)
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Fields(cleaned)
}

func filter(tokens []string, max int) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxKeywords
	}

	stopwords := vocab.Stopwords()
	seen := make(map[string]bool, len(tokens))
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) < minTokenLength || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		kept = append(kept, tok)
	}

	if len(kept) == 0 {
		return nil, ErrEmptyInput
	}

	sort.Slice(kept, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(kept[i]), utf8.RuneCountInString(kept[j])
		if li != lj {
			return li > lj
		}
		return kept[i] < kept[j]
	})

	if len(kept) > max {
		kept = kept[:max]
	}
	return kept, nil
}
