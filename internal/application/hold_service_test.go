package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

func TestHoldService_CreateHold(t *testing.T) {
	t.Run("persists hold expiring after ttl", func(t *testing.T) {
		h := newHarness(t)
		hold := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")

		if hold.ID != "hold-1" {
			t.Fatalf("expected generated id, got %q", hold.ID)
		}
		if !hold.ExpiresAt.Equal(testNow.Add(15 * time.Minute)) {
			t.Fatalf("expected expiry now+15m, got %s", hold.ExpiresAt)
		}
		if !hold.CreatedAt.Equal(testNow) {
			t.Fatalf("expected created at now, got %s", hold.CreatedAt)
		}
		if h.inv.Calls() != 1 {
			t.Fatalf("expected cache invalidation, got %d", h.inv.Calls())
		}
	})

	t.Run("back to back ranges do not overlap", func(t *testing.T) {
		h := newHarness(t)
		h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		h.hold(t, "B", "7", "2025-06-03", "2025-06-05")
	})

	t.Run("overlapping hold of another session conflicts on first shared date", func(t *testing.T) {
		h := newHarness(t)
		h.hold(t, "A", "7", "2025-06-01", "2025-06-03")

		_, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "B",
			Start:     day("2025-06-02"),
			End:       day("2025-06-04"),
			RoomIDs:   []string{"7"},
		})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if cErr.RoomID != "7" || !cErr.Date.Equal(day("2025-06-02")) || cErr.Status != availability.StatusProposed {
			t.Fatalf("unexpected conflict %+v", cErr)
		}
	})

	t.Run("own holds never conflict", func(t *testing.T) {
		h := newHarness(t)
		h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		h.hold(t, "A", "7", "2025-06-02", "2025-06-04")
	})

	t.Run("expired hold no longer blocks", func(t *testing.T) {
		h := newHarness(t)
		h.hold(t, "A", "7", "2025-06-01", "2025-06-03")

		h.clock.Advance(15*time.Minute - time.Second)
		_, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "B", Start: day("2025-06-01"), End: day("2025-06-02"), RoomIDs: []string{"7"},
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict before expiry, got %v", err)
		}

		h.clock.Advance(time.Second)
		h.hold(t, "B", "7", "2025-06-01", "2025-06-02")
	})

	t.Run("booked and blocked dates conflict", func(t *testing.T) {
		h := newHarness(t)
		h.seedBooking(t, "b-1", "7", "2025-06-05", "2025-06-08", "host@example.cz")
		h.seedBlock(t, "blk-1", "*", "2025-06-20", "udrzba")

		_, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "A", Start: day("2025-06-07"), End: day("2025-06-09"), RoomIDs: []string{"7"},
		})
		var cErr *ConflictError
		if !errors.As(err, &cErr) || cErr.Status != availability.StatusBooked || !cErr.Date.Equal(day("2025-06-07")) {
			t.Fatalf("expected booked conflict on 2025-06-07, got %v", err)
		}

		_, err = h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "A", Start: day("2025-06-19"), End: day("2025-06-21"), RoomIDs: []string{"12"},
		})
		if !errors.As(err, &cErr) || cErr.Status != availability.StatusBlocked || cErr.Reason != "udrzba" {
			t.Fatalf("expected wildcard block conflict, got %v", err)
		}

		_, err = h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "A", Start: day("2025-06-09"), End: day("2025-06-11"), RoomIDs: []string{"3"},
		})
		if !errors.As(err, &cErr) || cErr.Reason != "malovani" || !cErr.Date.Equal(day("2025-06-10")) {
			t.Fatalf("expected seeded settings block, got %v", err)
		}
	})

	t.Run("rooms are checked in request order", func(t *testing.T) {
		h := newHarness(t)
		h.hold(t, "A", "12", "2025-06-02", "2025-06-03")
		h.hold(t, "A", "7", "2025-06-03", "2025-06-04")

		_, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
			SessionID: "B", Start: day("2025-06-01"), End: day("2025-06-05"), RoomIDs: []string{"7", "12"},
		})
		var cErr *ConflictError
		if !errors.As(err, &cErr) || cErr.RoomID != "7" || !cErr.Date.Equal(day("2025-06-03")) {
			t.Fatalf("expected conflict on room 7 first, got %v", err)
		}
	})
}

func TestHoldService_CreateHoldRejectsInput(t *testing.T) {
	h := newHarness(t, WithMaxStayNights(14))
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateHoldParams
		check  func(error) bool
	}{
		{
			name:   "start equals end",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-03"), End: day("2025-06-03"), RoomIDs: []string{"7"}},
			check:  func(err error) bool { return errors.Is(err, ErrInvalidRange) },
		},
		{
			name:   "start after end",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-04"), End: day("2025-06-03"), RoomIDs: []string{"7"}},
			check:  func(err error) bool { return errors.Is(err, ErrInvalidRange) },
		},
		{
			name:   "unknown room",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"99"}},
			check: func(err error) bool {
				var rErr *InvalidRangeError
				return errors.As(err, &rErr) && rErr.RoomID == "99"
			},
		},
		{
			name:   "stay too long",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-30"), RoomIDs: []string{"7"}},
			check:  func(err error) bool { return errors.Is(err, ErrInvalidRange) },
		},
		{
			name:   "missing session",
			params: CreateHoldParams{Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"7"}},
			check:  func(err error) bool { return ErrorKind(err) == "validation" },
		},
		{
			name:   "no rooms",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-03")},
			check:  func(err error) bool { return ErrorKind(err) == "validation" },
		},
		{
			name: "guests exceed beds",
			params: CreateHoldParams{
				SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"7"},
				Guests: pricing.GuestBreakdown{InternalAdults: 2, ExternalChildren: 1, Toddlers: 3},
			},
			check: func(err error) bool {
				var vErr *ValidationError
				return errors.As(err, &vErr) && vErr.FieldErrors["guests"] != ""
			},
		},
		{
			name:   "negative price",
			params: CreateHoldParams{SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"7"}, Price: -1},
			check: func(err error) bool {
				var vErr *ValidationError
				return errors.As(err, &vErr) && vErr.FieldErrors["price"] != ""
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.holds.CreateHold(ctx, tc.params)
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	holds, err := h.store.ListHolds(ctx, persistenceAllHolds())
	if err != nil {
		t.Fatalf("list holds: %v", err)
	}
	if len(holds) != 0 {
		t.Fatalf("rejected requests must not leave holds, got %d", len(holds))
	}
}

func TestHoldService_ToddlersNeedNoBed(t *testing.T) {
	h := newHarness(t)
	_, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
		SessionID: "A", Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"7"},
		Guests: pricing.GuestBreakdown{InternalAdults: 1, ExternalAdults: 1, Toddlers: 2},
	})
	if err != nil {
		t.Fatalf("expected toddlers to fit, got %v", err)
	}
}

func TestHoldService_DeleteHold(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		h := newHarness(t)
		hold := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		if err := h.holds.DeleteHold(ctx, "A", hold.ID); err != nil {
			t.Fatalf("DeleteHold: %v", err)
		}
		h.hold(t, "B", "7", "2025-06-01", "2025-06-03")
	})

	t.Run("missing hold is not an error", func(t *testing.T) {
		h := newHarness(t)
		if err := h.holds.DeleteHold(ctx, "A", "nope"); err != nil {
			t.Fatalf("expected idempotent delete, got %v", err)
		}
		hold := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		if err := h.holds.DeleteHold(ctx, "A", hold.ID); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if err := h.holds.DeleteHold(ctx, "A", hold.ID); err != nil {
			t.Fatalf("second delete: %v", err)
		}
	})

	t.Run("other session is forbidden", func(t *testing.T) {
		h := newHarness(t)
		hold := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		if err := h.holds.DeleteHold(ctx, "B", hold.ID); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if _, err := h.store.GetHold(ctx, hold.ID); err != nil {
			t.Fatalf("hold must survive forbidden delete: %v", err)
		}
	})
}

func TestHoldService_ListActiveHolds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
	h.clock.Advance(10 * time.Minute)
	second := h.hold(t, "A", "12", "2025-06-01", "2025-06-03")
	h.hold(t, "B", "3", "2025-06-01", "2025-06-03")

	holds, err := h.holds.ListActiveHolds(ctx, "A")
	if err != nil {
		t.Fatalf("ListActiveHolds: %v", err)
	}
	if len(holds) != 2 || holds[0].ID != first.ID || holds[1].ID != second.ID {
		t.Fatalf("unexpected holds %+v", holds)
	}

	h.clock.Advance(5 * time.Minute)
	holds, err = h.holds.ListActiveHolds(ctx, "A")
	if err != nil {
		t.Fatalf("ListActiveHolds: %v", err)
	}
	if len(holds) != 1 || holds[0].ID != second.ID {
		t.Fatalf("expected only the unexpired hold, got %+v", holds)
	}
}

func TestHoldService_ReplaceHold(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces atomically", func(t *testing.T) {
		h := newHarness(t)
		old := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")

		h.clock.Advance(10 * time.Minute)
		renewed, err := h.holds.ReplaceHold(ctx, "A", old.ID, CreateHoldParams{
			Start: day("2025-06-02"), End: day("2025-06-05"), RoomIDs: []string{"7"},
			Guests: pricing.GuestBreakdown{InternalAdults: 2}, Price: 1200,
		})
		if err != nil {
			t.Fatalf("ReplaceHold: %v", err)
		}
		if renewed.ID == old.ID || renewed.SessionID != "A" {
			t.Fatalf("unexpected replacement %+v", renewed)
		}
		if !renewed.ExpiresAt.Equal(testNow.Add(25 * time.Minute)) {
			t.Fatalf("expected fresh expiry, got %s", renewed.ExpiresAt)
		}

		holds, _ := h.holds.ListActiveHolds(ctx, "A")
		if len(holds) != 1 || holds[0].ID != renewed.ID {
			t.Fatalf("expected only the new hold, got %+v", holds)
		}
	})

	t.Run("failed replacement keeps the old hold", func(t *testing.T) {
		h := newHarness(t)
		old := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		h.hold(t, "B", "12", "2025-06-01", "2025-06-03")

		_, err := h.holds.ReplaceHold(ctx, "A", old.ID, CreateHoldParams{
			Start: day("2025-06-01"), End: day("2025-06-03"), RoomIDs: []string{"12"},
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if _, err := h.store.GetHold(ctx, old.ID); err != nil {
			t.Fatalf("old hold must survive: %v", err)
		}
	})

	t.Run("cannot replace another session's hold", func(t *testing.T) {
		h := newHarness(t)
		old := h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
		_, err := h.holds.ReplaceHold(ctx, "B", old.ID, CreateHoldParams{
			Start: day("2025-06-05"), End: day("2025-06-06"), RoomIDs: []string{"7"},
		})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestHoldService_ReapExpired(t *testing.T) {
	h := newHarness(t, WithHoldTTL(time.Minute))
	ctx := context.Background()

	h.hold(t, "A", "7", "2025-06-01", "2025-06-03")
	h.hold(t, "B", "12", "2025-06-01", "2025-06-03")
	h.clock.Advance(30 * time.Second)
	h.hold(t, "C", "3", "2025-06-01", "2025-06-03")
	before := h.inv.Calls()

	removed, err := h.holds.ReapExpired(ctx)
	if err != nil || removed != 0 {
		t.Fatalf("expected nothing to reap, got %d, %v", removed, err)
	}
	if h.inv.Calls() != before {
		t.Fatalf("empty sweep must not invalidate")
	}

	h.clock.Advance(30 * time.Second)
	removed, err = h.holds.ReapExpired(ctx)
	if err != nil {
		t.Fatalf("ReapExpired: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 expired holds, got %d", removed)
	}
	if h.inv.Calls() != before+1 {
		t.Fatalf("expected invalidation after sweep")
	}

	holds, _ := h.store.ListHolds(ctx, persistenceAllHolds())
	if len(holds) != 1 || holds[0].SessionID != "C" {
		t.Fatalf("unexpected remaining holds %+v", holds)
	}
}

func TestHoldService_ConcurrentSessionsSingleWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const sessions = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.holds.CreateHold(ctx, CreateHoldParams{
				SessionID: string(rune('a' + i)),
				Start:     day("2025-06-01"),
				End:       day("2025-06-03"),
				RoomIDs:   []string{"7"},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if winners != 1 || conflicts != sessions-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d and %d", sessions-1, winners, conflicts)
	}
}
