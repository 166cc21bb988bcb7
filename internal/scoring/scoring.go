// Package scoring compares a student answer with a reference answer. All functions are
// pure: they normalize their inputs and never fail.
package scoring

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/pavelanni/autograder/internal/textnorm"
)

// Score tiers shared by the feedback messages and the grade labels.
const (
	ThresholdFair      = 60.0
	ThresholdGood      = 80.0
	ThresholdExcellent = 90.0
)

// Similarity returns the character-level sequence-matching ratio of the normalized
// inputs as a percentage. Two empty strings are identical and score 100.
func Similarity(a, b string) float64 {
	a, b = textnorm.Normalize(a), textnorm.Normalize(b)
	// Longest-match tie-breaking depends on argument order.
	if b < a {
		a, b = b, a
	}
	m := difflib.NewMatcherWithJunk(runes(a), runes(b), false, nil)
	return m.Ratio() * 100
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Coverage returns the percentage of the reference's normalized words that also appear
// in the student answer. An empty reference covers nothing and scores 0.
func Coverage(reference, student string) float64 {
	return overlap(textnorm.Words(reference), textnorm.Words(student))
}

// KeyTermCoverage is Coverage restricted to key terms: stop-words and short tokens are
// ignored on both sides.
func KeyTermCoverage(reference, student string) float64 {
	return overlap(textnorm.KeyTerms(reference), textnorm.KeyTerms(student))
}

func overlap(reference, student []string) float64 {
	if len(reference) == 0 {
		return 0
	}
	have := make(map[string]bool, len(student))
	for _, w := range student {
		have[w] = true
	}
	common := 0
	for _, w := range reference {
		if have[w] {
			common++
		}
	}
	return float64(common) / float64(len(reference)) * 100
}
