package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/persistence/memory"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

const testSettingsYAML = `
rooms:
  - {id: "7", name: "Pokoj 7", beds: 2, size: small}
  - {id: "3", name: "Pokoj 3", beds: 4, size: large}
  - {id: "12", name: "Pokoj 12", beds: 2, size: small}
prices:
  internal:
    small: {empty: 300, adult: 50, child: 25}
    large: {empty: 400, adult: 60, child: 30}
  external:
    small: {empty: 500, adult: 100, child: 50}
    large: {empty: 700, adult: 120, child: 60}
bulk_prices: {base_price: 2000, internal_adult: 100, internal_child: 50, external_adult: 250, external_child: 100}
blocked_dates:
  - {room_id: "3", date: 2025-06-10, reason: "malovani"}
`

var testNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testProperty(t *testing.T) *settings.Settings {
	t.Helper()
	s, err := settings.Parse([]byte(testSettingsYAML))
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	return s
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: testNow} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequence(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingInvalidator) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type serviceHarness struct {
	store    *memory.Storage
	property *settings.Settings
	clock    *testClock
	holds    *HoldService
	bookings *BookingService
	avail    *AvailabilityService
	inv      *countingInvalidator
}

func newHarness(t *testing.T, opts ...Option) *serviceHarness {
	t.Helper()
	h := &serviceHarness{
		store:    memory.Open(),
		property: testProperty(t),
		clock:    newTestClock(),
		inv:      &countingInvalidator{},
	}
	all := append([]Option{
		WithInvalidator(h.inv),
		WithEditTokens(sequence("token"), testArgon2Params),
	}, opts...)
	h.holds = NewHoldService(h.store, h.property, sequence("hold"), h.clock.Now, all...)
	h.bookings = NewBookingService(h.store, h.property, sequence("booking"), h.clock.Now, all...)
	h.avail = NewAvailabilityService(h.store, h.property, h.clock.Now, all...)
	return h
}

func (h *serviceHarness) hold(t *testing.T, session, roomID, start, end string) persistence.Hold {
	t.Helper()
	hold, err := h.holds.CreateHold(context.Background(), CreateHoldParams{
		SessionID: session,
		Start:     day(start),
		End:       day(end),
		RoomIDs:   []string{roomID},
		Guests:    pricing.GuestBreakdown{ExternalAdults: 1},
	})
	if err != nil {
		t.Fatalf("create hold %s %s..%s for %s: %v", roomID, start, end, session, err)
	}
	return hold
}

func (h *serviceHarness) seedBooking(t *testing.T, id, roomID, start, end, email string) {
	t.Helper()
	err := h.store.CreateBooking(context.Background(), persistence.Booking{
		ID:      id,
		Model:   pricing.ModelPerRoom,
		Start:   day(start),
		End:     day(end),
		Rooms:   []persistence.BookingRoom{{RoomID: roomID, Guests: pricing.GuestBreakdown{ExternalAdults: 1}}},
		Contact: persistence.Contact{Name: "Seed", Email: email},
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func (h *serviceHarness) seedBlock(t *testing.T, id, roomID, date, reason string) {
	t.Helper()
	err := h.store.CreateBlockedDate(context.Background(), persistence.BlockedDate{
		ID:     id,
		RoomID: roomID,
		Date:   day(date),
		Reason: reason,
	})
	if err != nil {
		t.Fatalf("seed blocked date: %v", err)
	}
}

func defaultContact() persistence.Contact {
	return persistence.Contact{Name: "Jana Novakova", Email: "jana@example.cz", Phone: "+420 777 000 111"}
}

func persistenceAllHolds() persistence.HoldFilter {
	return persistence.HoldFilter{}
}
