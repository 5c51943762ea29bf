package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/michalprusek/marianska-sub005/internal/logging"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var ctxBuf, baseBuf bytes.Buffer
	ctxLogger := slog.New(slog.NewTextHandler(&ctxBuf, nil))
	base := slog.New(slog.NewTextHandler(&baseBuf, nil))

	ctx := logging.ContextWithLogger(context.Background(), ctxLogger)
	serviceLogger(ctx, base, "HoldService", "CreateHold", "session_id", "s-1").Info("hello")

	if baseBuf.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", baseBuf.String())
	}
	line := ctxBuf.String()
	for _, want := range []string{"service=HoldService", "operation=CreateHold", "session_id=s-1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid range", err: &InvalidRangeError{Reason: "x"}, want: "invalid_range"},
		{name: "conflict", err: fmt.Errorf("wrap: %w", &ConflictError{RoomID: "7"}), want: "conflict"},
		{name: "missing rate", err: &pricing.MissingRateError{Tier: pricing.TierExternal, Size: pricing.SizeLarge}, want: "missing_rate"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"a": "b"}}, want: "validation"},
		{name: "pricing input", err: fmt.Errorf("%w: negative guest count", pricing.ErrInvalidInput), want: "validation"},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "forbidden", err: ErrForbidden, want: "forbidden"},
		{name: "other", err: errors.New("disk on fire"), want: "unexpected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind = %q, want %q", got, tc.want)
			}
		})
	}
}
