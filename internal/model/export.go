package model

// GradeReport is the JSON structure returned for a multi-question submission.
type GradeReport struct {
	Error            string                 `json:"error,omitempty"`
	Score            float64                `json:"score"`
	Grade            string                 `json:"grade"`
	QuestionResults  map[string]ScoreResult `json:"question_results"`
	AttemptedCount   int                    `json:"attempted_count"`
	TotalQuestions   int                    `json:"total_questions"`
	Questions        map[string]string      `json:"questions"`
	StudentAnswers   map[string]string      `json:"student_answers"`
	ReferenceAnswers map[string]string      `json:"reference_answers"`
}

// NewGradeReport flattens a batch result and the aligned inputs into a report.
func NewGradeReport(res BatchResult, questions []QuestionRecord, references, students map[string]string) GradeReport {
	report := GradeReport{
		Score:            res.FinalScore,
		Grade:            res.Grade,
		QuestionResults:  make(map[string]ScoreResult, len(res.QuestionResults)),
		AttemptedCount:   res.AttemptedCount,
		TotalQuestions:   res.TotalQuestions,
		Questions:        make(map[string]string, len(questions)),
		StudentAnswers:   make(map[string]string, len(students)),
		ReferenceAnswers: make(map[string]string, len(references)),
	}
	for _, qr := range res.QuestionResults {
		report.QuestionResults[qr.QuestionID] = qr.ScoreResult
	}
	for _, q := range questions {
		report.Questions[q.ID] = q.Text
	}
	for id, text := range students {
		report.StudentAnswers[id] = text
	}
	for id, text := range references {
		report.ReferenceAnswers[id] = text
	}
	return report
}

// ErrorGradeReport builds the report returned when a submission cannot be graded.
func ErrorGradeReport(msg string) GradeReport {
	return GradeReport{
		Error:            msg,
		Grade:            GradeError,
		QuestionResults:  map[string]ScoreResult{},
		Questions:        map[string]string{},
		StudentAnswers:   map[string]string{},
		ReferenceAnswers: map[string]string{},
	}
}
