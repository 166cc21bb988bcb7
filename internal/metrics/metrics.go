// Package metrics exposes prometheus collectors for grading activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavelanni/autograder/internal/model"
)

// Grading modes used as label values.
const (
	ModeBatch    = "batch"
	ModeDocument = "document"
)

// Metrics holds the grading collectors. A nil *Metrics records nothing.
type Metrics struct {
	AnswersGraded   *prometheus.CounterVec
	AnswerScore     prometheus.Histogram
	Grades          *prometheus.CounterVec
	GradingDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnswersGraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_answers_graded_total",
				Help: "Total number of answers graded",
			},
			[]string{"attempted"},
		),
		AnswerScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autograder_answer_score",
				Help:    "Blended score of attempted answers",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
		Grades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograder_grades_total",
				Help: "Total number of grade labels assigned",
			},
			[]string{"mode", "grade"},
		),
		GradingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograder_grading_duration_seconds",
				Help:    "Time spent grading one submission",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"mode"},
		),
	}
	reg.MustRegister(m.AnswersGraded, m.AnswerScore, m.Grades, m.GradingDuration)
	return m
}

// ObserveAnswer records one graded answer.
func (m *Metrics) ObserveAnswer(res model.ScoreResult) {
	if m == nil {
		return
	}
	if !res.Attempted {
		m.AnswersGraded.WithLabelValues("false").Inc()
		return
	}
	m.AnswersGraded.WithLabelValues("true").Inc()
	m.AnswerScore.Observe(res.Score)
}

// ObserveBatch records a graded multi-question submission.
func (m *Metrics) ObserveBatch(res model.BatchResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Grades.WithLabelValues(ModeBatch, res.Grade).Inc()
	m.GradingDuration.WithLabelValues(ModeBatch).Observe(elapsed.Seconds())
}

// ObserveDocument records a graded single document.
func (m *Metrics) ObserveDocument(res model.DocumentResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Grades.WithLabelValues(ModeDocument, res.Grade).Inc()
	m.GradingDuration.WithLabelValues(ModeDocument).Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
