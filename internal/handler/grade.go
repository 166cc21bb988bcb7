package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pavelanni/autograder/internal/document"
	"github.com/pavelanni/autograder/internal/grader"
	"github.com/pavelanni/autograder/internal/model"
)

// Multipart field names of the three uploaded files.
const (
	fieldQuestion  = "questionFile"
	fieldReference = "referenceFile"
	fieldStudent   = "studentFile"
)

var errMissingFile = errors.New("missing file")

// answerRequest is the JSON body of a single-answer grading request.
type answerRequest struct {
	Question  string `json:"question"`
	Reference string `json:"reference"`
	Student   string `json:"student"`
}

// uploads holds the raw content of the three files of a grading request.
type uploads struct {
	question, reference, student []byte
}

func (h *Handler) readUploads(w http.ResponseWriter, r *http.Request) (uploads, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, h.tr.T(r.Context(), "FileTooLarge"))
			return uploads{}, false
		}
		writeError(w, http.StatusBadRequest, h.tr.T(r.Context(), "MissingFiles"))
		return uploads{}, false
	}

	var u uploads
	for _, f := range []struct {
		field string
		dst   *[]byte
	}{
		{fieldQuestion, &u.question},
		{fieldReference, &u.reference},
		{fieldStudent, &u.student},
	} {
		data, err := readFormFile(r, f.field)
		if errors.Is(err, errMissingFile) {
			writeError(w, http.StatusBadRequest, h.tr.T(r.Context(), "MissingFiles"))
			return uploads{}, false
		}
		if err != nil {
			slog.Error("failed to read upload", "field", f.field, "error", err)
			writeError(w, http.StatusInternalServerError, h.tr.T(r.Context(), "GradingFailed"))
			return uploads{}, false
		}
		*f.dst = data
	}
	return u, true
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errMissingFile
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return data, nil
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	u, ok := h.readUploads(w, r)
	if !ok {
		return
	}

	split, err := document.SplitterFor(r.FormValue("split"))
	if err != nil {
		writeError(w, http.StatusBadRequest, h.tr.T(r.Context(), "InvalidRequest"))
		return
	}

	sub, err := document.Parse(split, u.question, u.reference, u.student)
	if err != nil {
		slog.Warn("unreadable upload", "run_id", model.RunIDFromContext(r.Context()), "error", err)
		writeJSON(w, http.StatusBadRequest, model.ErrorGradeReport(err.Error()))
		return
	}

	res, err := h.grader.Batch(r.Context(), sub.Questions, sub.References, sub.Students)
	if err != nil {
		status, msg := h.gradingError(r, err)
		writeJSON(w, status, model.ErrorGradeReport(msg))
		return
	}

	writeJSON(w, http.StatusOK, model.NewGradeReport(res, sub.Questions, sub.References, sub.Students))
}

func (h *Handler) handleGradeDocument(w http.ResponseWriter, r *http.Request) {
	u, ok := h.readUploads(w, r)
	if !ok {
		return
	}

	var texts [3]string
	for i, f := range []struct {
		name string
		raw  []byte
	}{
		{"question", u.question},
		{"reference", u.reference},
		{"student", u.student},
	} {
		text, err := document.Decode(f.raw)
		if err != nil {
			msg := h.tr.Td(r.Context(), "InvalidFile", map[string]any{"File": f.name, "Error": err.Error()})
			writeJSON(w, http.StatusBadRequest, model.ErrorDocumentResult(msg))
			return
		}
		texts[i] = text
	}

	res, err := h.grader.Document(r.Context(), texts[0], texts[1], texts[2])
	if err != nil {
		status, msg := h.gradingError(r, err)
		writeJSON(w, status, model.ErrorDocumentResult(msg))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleGradeAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, h.config.MaxUploadBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorAnswerResult(h.tr.T(r.Context(), "InvalidRequest")))
		return
	}

	res, err := h.grader.Answer(r.Context(), req.Question, req.Reference, req.Student)
	if err != nil {
		status, msg := h.gradingError(r, err)
		writeJSON(w, status, model.ErrorAnswerResult(msg))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// gradingError maps a grader error to a response status and a localized message.
func (h *Handler) gradingError(r *http.Request, err error) (int, string) {
	if errors.Is(err, grader.ErrAnswerTooLong) {
		return http.StatusBadRequest, h.tr.Td(r.Context(), "AnswerTooLong", map[string]any{"Limit": h.grader.MaxAnswerChars()})
	}
	return http.StatusInternalServerError, h.tr.T(r.Context(), "GradingFailed")
}
