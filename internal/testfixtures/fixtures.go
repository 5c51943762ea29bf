// Package testfixtures builds deterministic settings, bookings, holds and
// service harnesses for tests across packages.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

var (
	bookingCounter uint64
	holdCounter    uint64
	blockCounter   uint64
)

var referenceTime = time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical "now" used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// PropertyYAML describes three rooms: 7 and 12 are small with two beds,
// 3 is large with four beds and closed on 2025-06-10.
const PropertyYAML = `
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

// Property parses PropertyYAML.
func Property(tb testing.TB) *settings.Settings {
	tb.Helper()
	s, err := settings.Parse([]byte(PropertyYAML))
	if err != nil {
		tb.Fatalf("failed to parse property settings: %v", err)
	}
	return s
}

// Day parses a YYYY-MM-DD literal and panics on malformed input.
func Day(value string) time.Time {
	t, err := daterange.Parse(value)
	if err != nil {
		panic(err)
	}
	return t
}

// ----------------------------- Booking fixtures -----------------------------

// BookingOption configures a generated booking.
type BookingOption func(*persistence.Booking)

// NewBooking returns a one-night per-room booking of room 7 for one external
// adult, starting 2025-06-01.
func NewBooking(opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	adult := pricing.GuestBreakdown{ExternalAdults: 1}
	b := persistence.Booking{
		ID:     fmt.Sprintf("booking-%03d", idx),
		Model:  pricing.ModelPerRoom,
		Start:  Day("2025-06-01"),
		End:    Day("2025-06-02"),
		Rooms:  []persistence.BookingRoom{{RoomID: "7", Guests: adult}},
		Guests: adult,
		Contact: persistence.Contact{
			Name:  fmt.Sprintf("Host %03d", idx),
			Email: fmt.Sprintf("host%03d@example.com", idx),
		},
		TotalPrice: 600,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func WithBookingID(id string) BookingOption {
	return func(b *persistence.Booking) { b.ID = id }
}

// WithStay sets [start, end) from YYYY-MM-DD literals.
func WithStay(start, end string) BookingOption {
	return func(b *persistence.Booking) {
		b.Start, b.End = Day(start), Day(end)
	}
}

// WithRooms claims the listed rooms, one external adult each.
func WithRooms(roomIDs ...string) BookingOption {
	return func(b *persistence.Booking) {
		b.Rooms = b.Rooms[:0]
		var total pricing.GuestBreakdown
		for _, id := range roomIDs {
			g := pricing.GuestBreakdown{ExternalAdults: 1}
			b.Rooms = append(b.Rooms, persistence.BookingRoom{RoomID: id, Guests: g})
			total = total.Add(g)
		}
		b.Guests = total
	}
}

func WithContactEmail(email string) BookingOption {
	return func(b *persistence.Booking) { b.Contact.Email = email }
}

func WithEditTokenHash(hash string) BookingOption {
	return func(b *persistence.Booking) { b.EditTokenHash = hash }
}

// ----------------------------- Hold fixtures -----------------------------

// HoldOption configures a generated hold.
type HoldOption func(*persistence.Hold)

// NewHold returns a hold of room 7 for 2025-06-01..02 owned by "session-a",
// expiring fifteen minutes after ReferenceTime.
func NewHold(opts ...HoldOption) persistence.Hold {
	idx := atomic.AddUint64(&holdCounter, 1)
	h := persistence.Hold{
		ID:        fmt.Sprintf("hold-%03d", idx),
		SessionID: "session-a",
		RoomIDs:   []string{"7"},
		Start:     Day("2025-06-01"),
		End:       Day("2025-06-02"),
		Guests:    pricing.GuestBreakdown{ExternalAdults: 1},
		CreatedAt: referenceTime,
		ExpiresAt: referenceTime.Add(15 * time.Minute),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func WithHoldSession(sessionID string) HoldOption {
	return func(h *persistence.Hold) { h.SessionID = sessionID }
}

func WithHoldRooms(roomIDs ...string) HoldOption {
	return func(h *persistence.Hold) { h.RoomIDs = roomIDs }
}

func WithHoldStay(start, end string) HoldOption {
	return func(h *persistence.Hold) {
		h.Start, h.End = Day(start), Day(end)
	}
}

// WithHoldExpiry sets ExpiresAt relative to ReferenceTime.
func WithHoldExpiry(after time.Duration) HoldOption {
	return func(h *persistence.Hold) { h.ExpiresAt = referenceTime.Add(after) }
}

// ----------------------------- Blocked date fixtures -----------------------------

// NewBlockedDate closes roomID on date. Use "*" for the whole property.
func NewBlockedDate(roomID, date, reason string) persistence.BlockedDate {
	idx := atomic.AddUint64(&blockCounter, 1)
	return persistence.BlockedDate{
		ID:        fmt.Sprintf("block-%03d", idx),
		RoomID:    roomID,
		Date:      Day(date),
		Reason:    reason,
		CreatedAt: referenceTime,
	}
}
