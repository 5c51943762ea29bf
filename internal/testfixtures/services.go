package testfixtures

import (
	"context"
	"testing"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/persistence/memory"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

// FastTokenParams keeps argon2id cheap enough for table tests.
var FastTokenParams = application.Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

// Harness wires the three services over one store with a shared clock.
// Availability is the cache invalidator of Holds and Bookings, as in production.
type Harness struct {
	Store        persistence.Store
	Property     *settings.Settings
	Clock        *Clock
	Tokens       *IDGenerator
	Holds        *application.HoldService
	Bookings     *application.BookingService
	Availability *application.AvailabilityService
}

// NewMemoryHarness builds a Harness over a fresh in-memory store. Extra
// options are applied after the defaults.
func NewMemoryHarness(tb testing.TB, opts ...application.Option) *Harness {
	tb.Helper()
	store := memory.Open()
	tb.Cleanup(func() { _ = store.Close() })
	return newHarness(tb, store, opts...)
}

func newHarness(tb testing.TB, store persistence.Store, opts ...application.Option) *Harness {
	tb.Helper()
	h := &Harness{
		Store:    store,
		Property: Property(tb),
		Clock:    NewClock(ReferenceTime()),
		Tokens:   NewIDGenerator("token"),
	}
	ids := NewIDGenerator("id")

	h.Availability = application.NewAvailabilityService(store, h.Property, h.Clock.Now, opts...)
	shared := append([]application.Option{
		application.WithInvalidator(h.Availability),
		application.WithEditTokens(h.Tokens.Next, FastTokenParams),
	}, opts...)
	h.Holds = application.NewHoldService(store, h.Property, ids.NextFunc(), h.Clock.Now, shared...)
	h.Bookings = application.NewBookingService(store, h.Property, ids.NextFunc(), h.Clock.Now, shared...)
	return h
}

// SeedBooking stores b directly, bypassing validation.
func (h *Harness) SeedBooking(tb testing.TB, b persistence.Booking) persistence.Booking {
	tb.Helper()
	if err := h.Store.CreateBooking(context.Background(), b); err != nil {
		tb.Fatalf("failed to seed booking: %v", err)
	}
	h.Availability.Invalidate()
	return b
}

// SeedHold stores hold directly, bypassing validation.
func (h *Harness) SeedHold(tb testing.TB, hold persistence.Hold) persistence.Hold {
	tb.Helper()
	if err := h.Store.CreateHold(context.Background(), hold); err != nil {
		tb.Fatalf("failed to seed hold: %v", err)
	}
	h.Availability.Invalidate()
	return hold
}

// SeedBlockedDate stores a closure directly.
func (h *Harness) SeedBlockedDate(tb testing.TB, blocked persistence.BlockedDate) persistence.BlockedDate {
	tb.Helper()
	if err := h.Store.CreateBlockedDate(context.Background(), blocked); err != nil {
		tb.Fatalf("failed to seed blocked date: %v", err)
	}
	h.Availability.Invalidate()
	return blocked
}
