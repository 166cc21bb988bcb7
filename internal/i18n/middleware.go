package i18n

import "net/http"

// Middleware injects a localizer into every request context, preferring the client's
// Accept-Language over the default language.
func (t *Translator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := t.NewLocalizer(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
	})
}
