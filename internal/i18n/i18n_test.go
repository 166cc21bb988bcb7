package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTranslator(t *testing.T, lang string) (*Translator, context.Context) {
	t.Helper()
	tr, err := New(lang)
	if err != nil {
		t.Fatalf("New(%q): %v", lang, err)
	}
	return tr, WithLocalizer(context.Background(), tr.NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	tr, ctx := newTranslator(t, "en")

	got := tr.T(ctx, "MissingFiles")
	if got != "Missing required files" {
		t.Errorf("T(MissingFiles) = %q, want 'Missing required files'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	tr, ctx := newTranslator(t, "ru")

	got := tr.T(ctx, "MissingFiles")
	if got != "Не загружены обязательные файлы" {
		t.Errorf("T(MissingFiles) = %q, want 'Не загружены обязательные файлы'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	tr, ctx := newTranslator(t, "en")

	if got := tr.Tp(ctx, "QuestionsGraded", 1); got != "Graded 1 question." {
		t.Errorf("Tp(QuestionsGraded, 1) = %q, want 'Graded 1 question.'", got)
	}
	if got := tr.Tp(ctx, "QuestionsGraded", 5); got != "Graded 5 questions." {
		t.Errorf("Tp(QuestionsGraded, 5) = %q, want 'Graded 5 questions.'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	tr, ctx := newTranslator(t, "en")

	got := tr.Td(ctx, "InvalidFile", map[string]any{"File": "student", "Error": "bad bytes"})
	if got != "Could not read the student file: bad bytes" {
		t.Errorf("Td(InvalidFile) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	tr, ctx := newTranslator(t, "en")

	got := tr.T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestFallbackWithoutLocalizer(t *testing.T) {
	tr, _ := newTranslator(t, "ru")

	got := tr.T(context.Background(), "GradingFailed")
	if got != "Ошибка при оценивании" {
		t.Errorf("T(GradingFailed) = %q, want default-language text", got)
	}
}

func TestInvalidLanguage(t *testing.T) {
	if _, err := New("not a language!"); err == nil {
		t.Error("expected error for invalid language tag")
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	tr, _ := newTranslator(t, "en")

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"default", "", "Missing required files"},
		{"russian client", "ru-RU,ru;q=0.9", "Не загружены обязательные файлы"},
		{"unknown language", "fr", "Missing required files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = tr.T(r.Context(), "MissingFiles")
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
