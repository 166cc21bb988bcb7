package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelanni/autograder/internal/grader"
	"github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/model"
)

// RunIDHeader carries the identifier assigned to each grading request.
const RunIDHeader = "X-Grading-Run-ID"

// Config holds transport settings set via CLI flags.
type Config struct {
	MaxUploadBytes int64 // limit on the multipart body of upload endpoints
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	grader *grader.Grader
	tr     *i18n.Translator
	config Config
}

// New creates a new Handler.
func New(g *grader.Grader, tr *i18n.Translator, cfg Config) (*Handler, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &Handler{grader: g, tr: tr, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Group(func(r chi.Router) {
		r.Use(runIDMiddleware)
		r.Post("/grade", h.handleGrade)
		r.Post("/grade/document", h.handleGradeDocument)
		r.Post("/grade/answer", h.handleGradeAnswer)
	})
}

// runIDMiddleware tags the request with a fresh grading run ID.
func runIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RunIDHeader, id)
		next.ServeHTTP(w, r.WithContext(model.ContextWithRunID(r.Context(), id)))
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
