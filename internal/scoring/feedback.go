package scoring

import (
	"strings"

	"github.com/pavelanni/autograder/internal/textnorm"
)

// MaxSuggestedTerms caps how many missing reference terms the feedback lists.
const MaxSuggestedTerms = 5

// MissingTerms returns the reference words absent from the student answer, in the order
// they first appear in the reference. It uses the same word sets as Coverage.
func MissingTerms(reference, student string) []string {
	have := make(map[string]bool)
	for _, w := range textnorm.Words(student) {
		have[w] = true
	}
	var missing []string
	for _, w := range textnorm.Words(reference) {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	return missing
}

// Feedback builds the guidance shown to a student from the missing reference terms and
// the two component scores.
func Feedback(reference, student string, contentScore, semanticScore float64) string {
	var parts []string

	if missing := MissingTerms(reference, student); len(missing) > 0 {
		if len(missing) > MaxSuggestedTerms {
			missing = missing[:MaxSuggestedTerms]
		}
		parts = append(parts, "Consider including these key terms: "+strings.Join(missing, ", "))
	}

	switch {
	case contentScore < ThresholdFair:
		parts = append(parts, "Your answer is missing important concepts from the reference answer.")
	case contentScore < ThresholdGood:
		parts = append(parts, "Your answer includes some key concepts but could be more complete.")
	default:
		parts = append(parts, "Good coverage of key concepts.")
	}

	switch {
	case semanticScore < ThresholdFair:
		parts = append(parts, "Try to align your answer more closely with the reference answer's structure.")
	case semanticScore < ThresholdGood:
		parts = append(parts, "Your answer shows good understanding but could be more precise.")
	default:
		parts = append(parts, "Excellent match with the reference answer.")
	}

	return strings.Join(parts, " ")
}
