package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
)

const (
	sessionHeader   = "X-Session-ID"
	editTokenHeader = "X-Edit-Token"
)

// SessionFromHeader copies X-Session-ID into the request context.
func SessionFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
			r = r.WithContext(ContextWithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

var languageMatcher = language.NewMatcher([]language.Tag{language.Czech, language.English})

// NegotiateLanguage picks Czech or English from Accept-Language.
func NegotiateLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := LanguageCzech
		if header := r.Header.Get("Accept-Language"); header != "" {
			_, index := language.MatchStrings(languageMatcher, header)
			if index == 1 {
				lang = LanguageEnglish
			}
		}
		w.Header().Set("Content-Language", string(lang))
		next.ServeHTTP(w, r.WithContext(ContextWithLanguage(r.Context(), lang)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(rec, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", rec.status, "duration", time.Since(start))
		})
	}
}
