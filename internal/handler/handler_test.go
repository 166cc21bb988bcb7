package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/autograder/internal/grader"
	"github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/model"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	return newGraderTestServer(t, cfg, grader.New(nil, nil))
}

func newGraderTestServer(t *testing.T, cfg Config, g *grader.Grader) *httptest.Server {
	t.Helper()
	tr, err := i18n.New("en")
	require.NoError(t, err)
	h, err := New(g, tr, cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(tr.Middleware)
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postFiles(t *testing.T, url string, files map[string][]byte, lang string) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req, err := http.NewRequest(http.MethodPost, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGrade(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postFiles(t, srv.URL+"/grade", map[string][]byte{
		fieldQuestion:  []byte("What is Go?\n\nWhat is a channel?\n\nWhat is a goroutine?"),
		fieldReference: []byte("Go is a compiled language\n\nA typed conduit\n\nA lightweight thread"),
		fieldStudent:   []byte("Go is a compiled language\n\nNot attempted"),
	}, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RunIDHeader))

	var report model.GradeReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

	assert.Equal(t, 3, report.TotalQuestions)
	assert.Equal(t, 1, report.AttemptedCount)
	assert.InDelta(t, 100.0/3, report.Score, 1e-9)
	assert.Equal(t, grader.LabelNeedsImprovement, report.Grade)
	assert.Empty(t, report.Error)

	require.Len(t, report.QuestionResults, 3)
	assert.True(t, report.QuestionResults["1"].Attempted)
	assert.False(t, report.QuestionResults["2"].Attempted)
	assert.Equal(t, model.NotAttemptedFeedback, report.QuestionResults["3"].Feedback)
	assert.Equal(t, "What is a channel?", report.Questions["2"])
	assert.Equal(t, model.NotAttemptedText, report.StudentAnswers["3"])
	assert.Equal(t, "A lightweight thread", report.ReferenceAnswers["3"])
}

func TestGradeMissingFiles(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name string
		lang string
		want string
	}{
		{"english", "", "Missing required files"},
		{"russian", "ru", "Не загружены обязательные файлы"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postFiles(t, srv.URL+"/grade", map[string][]byte{
				fieldQuestion: []byte("Q"),
			}, tt.lang)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.want, body["error"])
		})
	}
}

func TestGradeUnknownSplitMode(t *testing.T) {
	srv := newTestServer(t, Config{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range []string{fieldQuestion, fieldReference, fieldStudent} {
		fw, err := mw.CreateFormFile(field, field+".txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("text"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("split", "sentences"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/grade", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGradeNotMultipart(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Post(srv.URL+"/grade", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGradeInvalidEncoding(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postFiles(t, srv.URL+"/grade", map[string][]byte{
		fieldQuestion:  []byte("Q"),
		fieldReference: []byte("R"),
		fieldStudent:   {0xC3, 0x28},
	}, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var report model.GradeReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, model.GradeError, report.Grade)
	assert.Contains(t, report.Error, "student file")
	assert.Equal(t, 0, report.TotalQuestions)
}

func TestGradeTooLarge(t *testing.T) {
	srv := newTestServer(t, Config{MaxUploadBytes: 64})
	resp := postFiles(t, srv.URL+"/grade", map[string][]byte{
		fieldQuestion:  bytes.Repeat([]byte("q"), 1024),
		fieldReference: []byte("R"),
		fieldStudent:   []byte("S"),
	}, "")
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func TestGradeDocument(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postFiles(t, srv.URL+"/grade/document", map[string][]byte{
		fieldQuestion:  []byte("What is photosynthesis?"),
		fieldReference: []byte("Photosynthesis converts light energy into chemical energy."),
		fieldStudent:   []byte("Plants convert light energy into chemical energy"),
	}, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res model.DocumentResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 79.24, res.Score)
	assert.Equal(t, grader.LabelGood, res.Grade)
	assert.Equal(t, "What is photosynthesis?", res.Question)
	assert.Empty(t, res.Error)
}

func TestGradeDocumentInvalidEncoding(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := postFiles(t, srv.URL+"/grade/document", map[string][]byte{
		fieldQuestion:  []byte("Q"),
		fieldReference: {0xFF, 0x00, 0xC3},
		fieldStudent:   []byte("S"),
	}, "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var res model.DocumentResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, model.GradeError, res.Grade)
	assert.Equal(t, 0.0, res.Score)
	assert.True(t, strings.HasPrefix(res.Error, "Could not read the reference file"), res.Error)
}

func TestGradeAnswer(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name          string
		body          string
		wantAttempted bool
		wantContent   float64
	}{
		{"attempted", `{"question":"Capital?","reference":"Paris is the capital of France","student":"The capital of France is Paris"}`, true, 100},
		{"empty answer", `{"question":"Q","reference":"Photosynthesis converts light energy into chemical energy","student":""}`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/grade/answer", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var res model.ScoreResult
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, tt.wantAttempted, res.Attempted)
			assert.Equal(t, tt.wantContent, res.ContentScore)
			if !tt.wantAttempted {
				assert.Equal(t, 0.0, res.Score)
			}
		})
	}
}

func TestGradeAnswerBadJSON(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Post(srv.URL+"/grade/answer", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var res model.AnswerErrorResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, model.GradeError, res.Grade)
	assert.Equal(t, "Invalid request body", res.Error)
}

type panickingObserver struct{}

func (panickingObserver) ObserveAnswer(model.ScoreResult) { panic("boom") }

func (panickingObserver) ObserveBatch(model.BatchResult, time.Duration) { panic("boom") }

func (panickingObserver) ObserveDocument(model.DocumentResult, time.Duration) { panic("boom") }

func TestGradeAnswerInternalFailure(t *testing.T) {
	srv := newGraderTestServer(t, Config{}, grader.New(nil, panickingObserver{}))
	resp, err := http.Post(srv.URL+"/grade/answer", "application/json",
		strings.NewReader(`{"question":"Q","reference":"alpha beta","student":"alpha"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var res map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, model.GradeError, res["grade"])
	assert.Equal(t, "Grading failed", res["error"])
	assert.Equal(t, 0.0, res["score"])
	assert.Equal(t, 0.0, res["content_score"])
	assert.Equal(t, 0.0, res["semantic_score"])
	assert.Equal(t, false, res["attempted"])
}

func TestAnswerTooLong(t *testing.T) {
	srv := newGraderTestServer(t, Config{}, grader.New(nil, nil, grader.WithMaxAnswerChars(20)))
	long := strings.Repeat("light energy ", 10)
	want := "Answers are limited to 20 characters"

	t.Run("answer", func(t *testing.T) {
		body, err := json.Marshal(answerRequest{Question: "Q", Reference: "light energy", Student: long})
		require.NoError(t, err)
		resp, err := http.Post(srv.URL+"/grade/answer", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res model.AnswerErrorResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, model.GradeError, res.Grade)
		assert.Equal(t, want, res.Error)
	})

	t.Run("batch", func(t *testing.T) {
		resp := postFiles(t, srv.URL+"/grade", map[string][]byte{
			fieldQuestion:  []byte("Q1\n\nQ2"),
			fieldReference: []byte("light energy\n\nchemical energy"),
			fieldStudent:   []byte("light energy\n\n" + long),
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var report model.GradeReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, model.GradeError, report.Grade)
		assert.Equal(t, want, report.Error)
		assert.Equal(t, 0, report.TotalQuestions)
	})

	t.Run("document", func(t *testing.T) {
		resp := postFiles(t, srv.URL+"/grade/document", map[string][]byte{
			fieldQuestion:  []byte("Q"),
			fieldReference: []byte(long),
			fieldStudent:   []byte("light energy"),
		}, "ru")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res model.DocumentResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, model.GradeError, res.Grade)
		assert.Equal(t, 0.0, res.Score)
		assert.Equal(t, "Длина ответа не должна превышать 20 символов", res.Error)
	})
}
