// Package grader combines the scorers into per-question, per-submission and
// per-document results.
package grader

import (
	"math"
	"strings"

	"github.com/pavelanni/autograder/internal/model"
	"github.com/pavelanni/autograder/internal/scoring"
)

// Grade labels.
const (
	LabelExcellent        = "Excellent"
	LabelVeryGood         = "Very Good"
	LabelGood             = "Good"
	LabelSatisfactory     = "Satisfactory"
	LabelFair             = "Fair"
	LabelNeedsImprovement = "Needs Improvement"
)

// Cut-offs that only one of the two scales uses.
const (
	batchGoodThreshold    = 70.0
	documentGoodThreshold = 75.0
)

// Document mode weights similarity over key-term coverage.
const (
	documentSimilarityWeight = 0.6
	documentCoverageWeight   = 0.4
)

// BatchGrade maps a submission's final score to its label. Lower bounds are inclusive.
func BatchGrade(score float64) string {
	switch {
	case score >= scoring.ThresholdExcellent:
		return LabelExcellent
	case score >= scoring.ThresholdGood:
		return LabelVeryGood
	case score >= batchGoodThreshold:
		return LabelGood
	case score >= scoring.ThresholdFair:
		return LabelSatisfactory
	default:
		return LabelNeedsImprovement
	}
}

// DocumentGrade maps a single-document score to its label. It is a coarser scale than
// BatchGrade and is used only by GradeDocument.
func DocumentGrade(score float64) string {
	switch {
	case score >= scoring.ThresholdExcellent:
		return LabelExcellent
	case score >= documentGoodThreshold:
		return LabelGood
	case score >= scoring.ThresholdFair:
		return LabelFair
	default:
		return LabelNeedsImprovement
	}
}

// IsAttempted reports whether a student answer counts as an attempt: it must be
// non-blank and not the "Not attempted" placeholder in any letter case.
func IsAttempted(student string) bool {
	s := strings.TrimSpace(student)
	return s != "" && !strings.EqualFold(s, model.NotAttemptedText)
}

// GradeOne scores a single student answer against its reference. The question text is
// accepted for symmetry with the callers but does not affect the score.
func GradeOne(_, reference, student string) model.ScoreResult {
	if !IsAttempted(student) {
		return model.ScoreResult{Feedback: model.NotAttemptedFeedback}
	}

	semantic := scoring.Similarity(reference, student)
	content := scoring.Coverage(reference, student)
	return model.ScoreResult{
		Attempted:     true,
		Score:         (semantic + content) / 2,
		ContentScore:  content,
		SemanticScore: semantic,
		Feedback:      scoring.Feedback(reference, student, content, semantic),
	}
}

// GradeAll grades every question in order. References and student answers are looked
// up by question ID; missing entries fall back to placeholder text, so a short student
// document leaves the trailing questions unattempted.
//
// The three inputs must already be aligned by the caller: question i pairs with the
// i-th reference block and the i-th student block.
func GradeAll(questions []model.QuestionRecord, references, students map[string]string) model.BatchResult {
	res := model.BatchResult{
		QuestionResults: make([]model.QuestionResult, 0, len(questions)),
		TotalQuestions:  len(questions),
	}

	var total float64
	for _, q := range questions {
		reference, ok := references[q.ID]
		if !ok {
			reference = model.NoReferenceAnswerText
		}
		student, ok := students[q.ID]
		if !ok {
			student = model.NotAttemptedText
		}

		sr := GradeOne(q.Text, reference, student)
		if sr.Attempted {
			res.AttemptedCount++
			total += sr.Score
		}
		res.QuestionResults = append(res.QuestionResults, model.QuestionResult{QuestionID: q.ID, ScoreResult: sr})
	}

	if len(questions) > 0 {
		res.FinalScore = total / float64(len(questions))
	}
	res.Grade = BatchGrade(res.FinalScore)
	return res
}

// GradeDocument grades a whole student document against a whole reference document.
// Similarity and key-term coverage are blended 60/40 and all scores are rounded to two
// decimals. The inputs are echoed back in the result.
func GradeDocument(question, reference, student string) model.DocumentResult {
	question = strings.TrimSpace(question)
	reference = strings.TrimSpace(reference)
	student = strings.TrimSpace(student)

	semantic := scoring.Similarity(reference, student)
	content := scoring.KeyTermCoverage(reference, student)
	score := semantic*documentSimilarityWeight + content*documentCoverageWeight

	// The feedback tiers follow the plain word coverage so that the listed missing
	// terms and the coverage message agree.
	feedback := scoring.Feedback(reference, student, scoring.Coverage(reference, student), semantic)

	return model.DocumentResult{
		Score:           round2(score),
		Grade:           DocumentGrade(score),
		Feedback:        strings.Join(strings.Fields(feedback), " "),
		ContentScore:    round2(content),
		SemanticScore:   round2(semantic),
		Question:        question,
		ReferenceAnswer: reference,
		StudentAnswer:   student,
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
