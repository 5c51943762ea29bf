package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   Language
	}{
		{header: "", want: LanguageCzech},
		{header: "cs-CZ,cs;q=0.9", want: LanguageCzech},
		{header: "en-GB,en;q=0.8", want: LanguageEnglish},
		{header: "de-DE", want: LanguageCzech},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			var got Language
			handler := NegotiateLanguage(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = LanguageFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Accept-Language", tc.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionFromHeader(t *testing.T) {
	var got string
	handler := SessionFromHeader(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(sessionHeader, "  abc  ")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", got)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, got)
}

func TestRequestLoggerAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, LoggerFromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/holds/h1", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "/holds/h1", entry["path"])
	assert.Equal(t, float64(1), entry["request_id"])
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	router := NewRouter(RouterConfig{
		Middleware: []func(http.Handler) http.Handler{
			func(http.Handler) http.Handler {
				return http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
			},
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
