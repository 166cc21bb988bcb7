package model

import "context"

// NotAttemptedFeedback is the feedback given for a question the student skipped.
const NotAttemptedFeedback = "Question not attempted"

// Sentinel answer texts used when the parallel documents are shorter than the question set.
const (
	NotAttemptedText      = "Not attempted"
	NoReferenceAnswerText = "No reference answer provided"
)

// GradeError is the grade label of a result that could not be computed.
const GradeError = "Error"

// QuestionRecord is one question of a submitted set, identified by its 1-based ordinal.
type QuestionRecord struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ScoreResult is the outcome of grading one answer against its reference.
type ScoreResult struct {
	Attempted     bool    `json:"attempted"`
	Score         float64 `json:"score"`
	ContentScore  float64 `json:"content_score"`
	SemanticScore float64 `json:"semantic_score"`
	Feedback      string  `json:"feedback"`
}

// QuestionResult pairs a ScoreResult with the question it belongs to.
type QuestionResult struct {
	QuestionID string
	ScoreResult
}

// BatchResult aggregates the per-question results of one submission.
type BatchResult struct {
	QuestionResults []QuestionResult
	FinalScore      float64 // mean over all questions, unattempted ones count as 0
	Grade           string
	AttemptedCount  int
	TotalQuestions  int
}

// DocumentResult is the outcome of grading a whole document as a single answer.
type DocumentResult struct {
	Score           float64 `json:"score"`
	Grade           string  `json:"grade"`
	Feedback        string  `json:"feedback"`
	ContentScore    float64 `json:"content_score"`
	SemanticScore   float64 `json:"semantic_score"`
	Question        string  `json:"question"`
	ReferenceAnswer string  `json:"reference_answer"`
	StudentAnswer   string  `json:"student_answer"`
	Error           string  `json:"error,omitempty"`
}

// ErrorDocumentResult builds the result reported when a document cannot be graded.
func ErrorDocumentResult(msg string) DocumentResult {
	return DocumentResult{
		Grade:    GradeError,
		Feedback: "An error occurred while grading: " + msg,
		Error:    msg,
	}
}

// AnswerErrorResult is reported when a single answer cannot be graded.
type AnswerErrorResult struct {
	ScoreResult
	Grade string `json:"grade"`
	Error string `json:"error"`
}

// ErrorAnswerResult builds the zero-score result of a failed single-answer request.
func ErrorAnswerResult(msg string) AnswerErrorResult {
	return AnswerErrorResult{
		ScoreResult: ScoreResult{Feedback: "An error occurred while grading: " + msg},
		Grade:       GradeError,
		Error:       msg,
	}
}

type runIDCtxKey struct{}

// ContextWithRunID stores the grading run identifier in context.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDCtxKey{}, id)
}

// RunIDFromContext retrieves the grading run identifier (empty string if not set).
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDCtxKey{}).(string)
	return id
}
