// Package textnorm turns raw answer text into the normalized form every scorer compares.
package textnorm

import (
	"strings"
	"unicode/utf8"
)

// Punctuation is the ASCII punctuation set removed during normalization.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// MinTermLength is the shortest token kept as a key term.
const MinTermLength = 3

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
}

var punctStripper = strings.NewReplacer(punctuationPairs()...)

func punctuationPairs() []string {
	pairs := make([]string, 0, 2*len(Punctuation))
	for _, c := range Punctuation {
		pairs = append(pairs, string(c), "")
	}
	return pairs
}

// Normalize lowercases text, strips ASCII punctuation and collapses whitespace runs
// into single spaces.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctStripper.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Words returns the unique tokens of the normalized text in first-seen order.
func Words(text string) []string {
	return unique(strings.Fields(Normalize(text)), func(string) bool { return true })
}

// KeyTerms returns the unique normalized tokens that are not stop-words and are at
// least MinTermLength characters long, in first-seen order.
func KeyTerms(text string) []string {
	return unique(strings.Fields(Normalize(text)), IsKeyTerm)
}

// IsKeyTerm reports whether a normalized token counts as a key term.
func IsKeyTerm(word string) bool {
	return utf8.RuneCountInString(word) >= MinTermLength && !stopWords[word]
}

func unique(tokens []string, keep func(string) bool) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if seen[t] || !keep(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
