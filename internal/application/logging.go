package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/michalprusek/marianska-sub005/internal/logging"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Component(ctx, base, "service", serviceName, operation, attrs...)
}

// failureLevel keeps expected rejections such as conflicts below error level.
func failureLevel(err error) slog.Level {
	if ErrorKind(err) == "unexpected" {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, pricing.ErrMissingRate):
		return "missing_rate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, pricing.ErrInvalidInput):
		return "validation"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
