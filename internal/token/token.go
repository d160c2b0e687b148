// Package token normalizes raw source text into search terms.
//
// The same normalization is applied to indexed file content and to query
// terms, so a query token can only ever hit the vocabulary it was indexed
// under. Tokenization never fails: binary or malformed input simply yields
// few or no tokens.
package token

import (
	"strings"
	"unicode"
)

// DefaultMinLength is the minimum token length kept after normalization.
// Single characters are almost always syntax noise in source code.
const DefaultMinLength = 2

// Tokenizer splits text into lowercase alphanumeric/underscore terms.
type Tokenizer struct {
	minLength int
}

// New creates a Tokenizer. A minLength below 1 falls back to
// DefaultMinLength.
func New(minLength int) *Tokenizer {
	if minLength < 1 {
		minLength = DefaultMinLength
	}
	return &Tokenizer{minLength: minLength}
}

// MinLength returns the configured minimum token length.
func (t *Tokenizer) MinLength() int {
	return t.minLength
}

// Tokenize splits text on non-alphanumeric/underscore boundaries,
// lowercases each token, and drops tokens shorter than the minimum length
// as well as purely numeric tokens. The returned slice preserves input
// order and may be empty.
func (t *Tokenizer) Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < t.minLength {
			continue
		}
		if isNumeric(f) {
			continue
		}
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// Frequencies counts occurrences per token.
func Frequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}
	return freq
}

// isNumeric reports whether s consists only of ASCII digits.
func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
