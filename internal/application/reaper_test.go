package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type reaperStub struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
	after int
}

func (r *reaperStub) ReapExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls == r.after {
		close(r.done)
	}
	return 1, r.err
}

func TestHoldReaper_Run(t *testing.T) {
	t.Parallel()

	for _, stubErr := range []error{nil, errors.New("store down")} {
		stub := &reaperStub{done: make(chan struct{}), after: 3, err: stubErr}
		reaper := NewHoldReaper(stub, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

		ctx, cancel := context.WithCancel(context.Background())
		finished := make(chan struct{})
		go func() {
			reaper.Run(ctx)
			close(finished)
		}()

		select {
		case <-stub.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("reaper did not sweep repeatedly (err=%v)", stubErr)
		}
		cancel()

		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatalf("reaper did not stop after cancellation")
		}
	}
}

func TestNewHoldReaperDefaultsInterval(t *testing.T) {
	t.Parallel()

	reaper := NewHoldReaper(&reaperStub{}, 0, nil)
	if reaper.interval != 30*time.Second {
		t.Fatalf("expected default interval, got %s", reaper.interval)
	}
}
