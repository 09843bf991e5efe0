// Package text provides the pure string operations the resolution pipeline is
// built on: normalization, keyword extraction, and edit-distance similarity.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultKeywordCount is how many keywords are extracted when callers have no
// reason to pick another bound.
const DefaultKeywordCount = 5

// stopWords are tokens too generic to distinguish accounts.
var stopWords = map[string]struct{}{
	"the":      {},
	"and":      {},
	"for":      {},
	"from":     {},
	"with":     {},
	"other":    {},
	"misc":     {},
	"general":  {},
	"account":  {},
	"accounts": {},
}

// Normalize lower-cases the input, replaces every non-alphanumeric rune with a
// space, collapses runs of whitespace and trims. It is a total function:
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Keywords normalizes the input, splits it on whitespace and returns up to
// maxCount tokens in their original order, dropping stop words and tokens of
// two runes or fewer.
func Keywords(s string, maxCount int) []string {
	if maxCount <= 0 {
		return nil
	}

	var keywords []string
	for _, token := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(token) <= 2 {
			continue
		}
		if _, skip := stopWords[token]; skip {
			continue
		}

		keywords = append(keywords, token)
		if len(keywords) == maxCount {
			break
		}
	}

	return keywords
}

// Similarity scores how close two strings are as 1 - distance/maxLen, where
// distance is the unit-cost Levenshtein edit distance. The result is always in
// [0, 1] and symmetric; two empty strings are identical by convention.
func Similarity(a, b string) float64 {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)

	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(maxLen)
}
