package http

import (
	"context"
	"log/slog"

	"github.com/michalprusek/marianska-sub005/internal/logging"
)

type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	languageContextKey  contextKey = "language"
)

// ContextWithSessionID returns a derived context carrying the caller's browsing session.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

// SessionIDFromContext extracts the browsing session, empty when the caller sent none.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}

// ContextWithLanguage records the negotiated response language.
func ContextWithLanguage(ctx context.Context, lang Language) context.Context {
	return context.WithValue(ctx, languageContextKey, lang)
}

// LanguageFromContext returns the negotiated language, Czech by default.
func LanguageFromContext(ctx context.Context) Language {
	if lang, ok := ctx.Value(languageContextKey).(Language); ok {
		return lang
	}
	return LanguageCzech
}

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
