package grader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/pavelanni/autograder/internal/model"
)

// Observer receives every result the Grader produces.
type Observer interface {
	ObserveAnswer(res model.ScoreResult)
	ObserveBatch(res model.BatchResult, elapsed time.Duration)
	ObserveDocument(res model.DocumentResult, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAnswer(model.ScoreResult) {}

func (nopObserver) ObserveBatch(model.BatchResult, time.Duration) {}

func (nopObserver) ObserveDocument(model.DocumentResult, time.Duration) {}

// DefaultMaxAnswerChars is the answer length limit used unless WithMaxAnswerChars
// overrides it. Similarity cost grows with the product of the answer lengths.
const DefaultMaxAnswerChars = 2000

// ErrAnswerTooLong is returned for reference or student answers over the length limit.
var ErrAnswerTooLong = errors.New("answer too long")

// Option configures a Grader.
type Option func(*Grader)

// WithMaxAnswerChars limits reference and student answers to n characters. Zero or a
// negative n removes the limit.
func WithMaxAnswerChars(n int) Option { return func(g *Grader) { g.maxChars = n } }

// Grader is the boundary between the transport and the scoring pipeline. It logs each
// run, reports results to an Observer and turns panics into errors so that no fault
// escapes to the caller.
type Grader struct {
	log      *slog.Logger
	obs      Observer
	maxChars int
}

// New creates a Grader. A nil logger uses slog.Default; a nil observer records nothing.
func New(log *slog.Logger, obs Observer, opts ...Option) *Grader {
	if log == nil {
		log = slog.Default()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	g := &Grader{log: log, obs: obs, maxChars: DefaultMaxAnswerChars}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// MaxAnswerChars returns the answer length limit, or 0 when there is none.
func (g *Grader) MaxAnswerChars() int {
	if g.maxChars < 0 {
		return 0
	}
	return g.maxChars
}

// Answer grades a single answer.
func (g *Grader) Answer(ctx context.Context, question, reference, student string) (res model.ScoreResult, err error) {
	defer g.recoverInto(ctx, "answer", &err)

	if err := g.checkLength(reference, student); err != nil {
		return model.ScoreResult{}, g.reject(ctx, "answer", err)
	}

	res = GradeOne(question, reference, student)
	g.obs.ObserveAnswer(res)
	g.log.Debug("graded answer",
		"run_id", model.RunIDFromContext(ctx),
		"attempted", res.Attempted,
		"score", res.Score,
	)
	return res, nil
}

// Batch grades a multi-question submission. See GradeAll for the alignment contract.
func (g *Grader) Batch(ctx context.Context, questions []model.QuestionRecord, references, students map[string]string) (res model.BatchResult, err error) {
	defer g.recoverInto(ctx, "batch", &err)

	for _, q := range questions {
		if err := g.checkLength(references[q.ID], students[q.ID]); err != nil {
			return model.BatchResult{}, g.reject(ctx, "batch", fmt.Errorf("question %s: %w", q.ID, err))
		}
	}

	start := time.Now()
	res = GradeAll(questions, references, students)
	elapsed := time.Since(start)

	for _, qr := range res.QuestionResults {
		g.obs.ObserveAnswer(qr.ScoreResult)
	}
	g.obs.ObserveBatch(res, elapsed)
	g.log.Info("graded submission",
		"run_id", model.RunIDFromContext(ctx),
		"total_questions", res.TotalQuestions,
		"attempted", res.AttemptedCount,
		"final_score", res.FinalScore,
		"grade", res.Grade,
		"elapsed", elapsed,
	)
	return res, nil
}

// Document grades a single document. On failure the result carries the "Error" grade
// and the returned error says why.
func (g *Grader) Document(ctx context.Context, question, reference, student string) (res model.DocumentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.failure(ctx, "document", r)
			res = model.ErrorDocumentResult(err.Error())
		}
	}()

	if err := g.checkLength(reference, student); err != nil {
		err = g.reject(ctx, "document", err)
		return model.ErrorDocumentResult(err.Error()), err
	}

	start := time.Now()
	res = GradeDocument(question, reference, student)
	elapsed := time.Since(start)

	g.obs.ObserveDocument(res, elapsed)
	g.log.Info("graded document",
		"run_id", model.RunIDFromContext(ctx),
		"score", res.Score,
		"grade", res.Grade,
		"elapsed", elapsed,
	)
	return res, nil
}

// recoverInto must be deferred directly so that recover sees the panic.
func (g *Grader) recoverInto(ctx context.Context, op string, err *error) {
	if r := recover(); r != nil {
		*err = g.failure(ctx, op, r)
	}
}

func (g *Grader) failure(ctx context.Context, op string, r any) error {
	err := fmt.Errorf("grade %s: %v", op, r)
	g.log.Error("grading failed", "run_id", model.RunIDFromContext(ctx), "op", op, "error", err)
	return err
}

func (g *Grader) checkLength(answers ...string) error {
	if g.maxChars <= 0 {
		return nil
	}
	for _, a := range answers {
		if n := utf8.RuneCountInString(a); n > g.maxChars {
			return fmt.Errorf("%w: %d characters, limit is %d", ErrAnswerTooLong, n, g.maxChars)
		}
	}
	return nil
}

func (g *Grader) reject(ctx context.Context, op string, err error) error {
	g.log.Warn("answer rejected", "run_id", model.RunIDFromContext(ctx), "op", op, "error", err)
	return fmt.Errorf("grade %s: %w", op, err)
}
