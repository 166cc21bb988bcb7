// Package document turns uploaded question, reference and student files into the
// aligned per-question records the grader consumes.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pavelanni/autograder/internal/model"
)

// ErrInvalidEncoding is returned for uploads that are neither UTF-8 nor BOM-marked UTF-16.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")

var (
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
)

// Decode converts raw file content to trimmed text. A leading byte order mark selects
// UTF-8 or UTF-16 and is dropped; content without one must be valid UTF-8.
func Decode(raw []byte) (string, error) {
	utf16 := bytes.HasPrefix(raw, utf16BEBOM) || bytes.HasPrefix(raw, utf16LEBOM)
	if !utf16 && !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	return strings.TrimSpace(text), nil
}

// SplitBlocks splits text on blank-line boundaries ("\n\n") and trims each block.
// Extra blank lines produce empty blocks, which keeps a skipped answer in its
// position. Blank text has no blocks.
func SplitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, "\n\n")
	blocks := make([]string, len(parts))
	for i, p := range parts {
		blocks[i] = strings.TrimSpace(p)
	}
	return blocks
}

var itemPrefixes = []string{"1.", "2.", "3.", "4.", "5."}

// SplitNumberedItems groups non-empty lines into items, starting a new item at each line
// numbered "1." through "5.". Lines before the first number belong to the first item.
func SplitNumberedItems(text string) []string {
	var items []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if hasItemPrefix(line) && len(current) > 0 {
			items = append(items, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		items = append(items, strings.Join(current, "\n"))
	}
	return items
}

func hasItemPrefix(line string) bool {
	for _, p := range itemPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Submission holds the three aligned inputs of a multi-question grading request.
type Submission struct {
	Questions  []model.QuestionRecord
	References map[string]string
	Students   map[string]string
}

// Align pairs question i with the i-th reference and the i-th student block and gives
// each the ordinal ID "i" (1-based). References and answers missing at the end are
// filled with placeholder text. The blocks must already be in matching order; no
// attempt is made to match them by content.
func Align(questions, references, students []string) Submission {
	sub := Submission{
		Questions:  make([]model.QuestionRecord, 0, len(questions)),
		References: make(map[string]string, len(questions)),
		Students:   make(map[string]string, len(questions)),
	}
	for i, q := range questions {
		id := strconv.Itoa(i + 1)
		sub.Questions = append(sub.Questions, model.QuestionRecord{ID: id, Text: strings.TrimSpace(q)})

		sub.References[id] = model.NoReferenceAnswerText
		if i < len(references) {
			sub.References[id] = strings.TrimSpace(references[i])
		}
		sub.Students[id] = model.NotAttemptedText
		if i < len(students) {
			sub.Students[id] = strings.TrimSpace(students[i])
		}
	}
	return sub
}

// SplitFunc splits decoded text into per-question blocks.
type SplitFunc func(text string) []string

// Split modes accepted by SplitterFor.
const (
	SplitBlank    = "blank"
	SplitNumbered = "numbered"
)

// SplitterFor returns the split function for a mode name. An empty mode means
// SplitBlank.
func SplitterFor(mode string) (SplitFunc, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", SplitBlank:
		return SplitBlocks, nil
	case SplitNumbered:
		return SplitNumberedItems, nil
	default:
		return nil, fmt.Errorf("unknown split mode %q", mode)
	}
}

// Parse decodes the three uploaded files, splits each with split and aligns the blocks.
func Parse(split SplitFunc, questions, references, students []byte) (Submission, error) {
	var texts [3]string
	for i, raw := range [][]byte{questions, references, students} {
		text, err := Decode(raw)
		if err != nil {
			return Submission{}, fmt.Errorf("%s file: %w", fileNames[i], err)
		}
		texts[i] = text
	}
	return Align(split(texts[0]), split(texts[1]), split(texts[2])), nil
}

var fileNames = [3]string{"question", "reference", "student"}
