package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)

	logger.Info("hold created")
	logger.Warn("hold conflict", "room_id", "7")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hold conflict" || entry["room_id"] != "7" {
		t.Fatalf("unexpected record: %v", entry)
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := New(&bytes.Buffer{}, slog.LevelInfo)
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger for bare context")
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("expected nil logger to leave context untouched")
	}
}

func TestResolvePrefersContextLogger(t *testing.T) {
	ctxLogger := New(&bytes.Buffer{}, slog.LevelInfo)
	fallback := New(&bytes.Buffer{}, slog.LevelInfo)

	tests := []struct {
		name     string
		ctx      context.Context
		fallback *slog.Logger
		want     *slog.Logger
	}{
		{name: "context logger", ctx: ContextWithLogger(context.Background(), ctxLogger), fallback: fallback, want: ctxLogger},
		{name: "fallback", ctx: context.Background(), fallback: fallback, want: fallback},
		{name: "default", ctx: context.Background(), want: slog.Default()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.ctx, tt.fallback); got != tt.want {
				t.Fatalf("Resolve picked the wrong logger")
			}
		})
	}
}

func TestComponentAddsScope(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(context.Background(), New(&buf, slog.LevelInfo), "service", "HoldService", "CreateHold", "session_id", "s1")
	logger.Info("hold created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	want := map[string]string{"service": "HoldService", "operation": "CreateHold", "session_id": "s1"}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("expected %s=%q, got %v", key, value, entry[key])
		}
	}
}
