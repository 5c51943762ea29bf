package persistence

import (
	"context"
	"slices"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

// Window narrows queries to records overlapping [From, To). Nil bounds are open.
type Window struct {
	From *time.Time
	To   *time.Time
}

// NewWindow builds a closed window over [from, to).
func NewWindow(from, to time.Time) Window {
	f, t := daterange.Day(from), daterange.Day(to)
	return Window{From: &f, To: &t}
}

// Overlaps reports whether [start, end) intersects the window.
func (w Window) Overlaps(start, end time.Time) bool {
	from, to := start, end
	if w.From != nil {
		from = *w.From
	}
	if w.To != nil {
		to = *w.To
	}
	return daterange.Overlaps(start, end, from, to)
}

// BookingFilter narrows booking queries.
type BookingFilter struct {
	RoomIDs []string
	Window  Window
}

// Matches applies the filter to a booking.
func (f BookingFilter) Matches(b Booking) bool {
	if len(f.RoomIDs) > 0 && !intersects(b.RoomIDs(), f.RoomIDs) {
		return false
	}
	return f.Window.Overlaps(b.Start, b.End)
}

// BlockedDateFilter narrows blocked date queries. Wildcard entries always match RoomIDs.
type BlockedDateFilter struct {
	RoomIDs []string
	Window  Window
}

// Matches applies the filter to a blocked date.
func (f BlockedDateFilter) Matches(b BlockedDate) bool {
	if len(f.RoomIDs) > 0 && b.RoomID != "*" && !slices.Contains(f.RoomIDs, b.RoomID) {
		return false
	}
	return f.Window.Overlaps(b.Date, b.Date.AddDate(0, 0, 1))
}

// HoldFilter narrows hold queries.
type HoldFilter struct {
	SessionID string
	RoomIDs   []string
	Window    Window
	// ActiveAt keeps only holds whose expiry is after the instant.
	ActiveAt *time.Time
}

// Matches applies the filter to a hold.
func (f HoldFilter) Matches(h Hold) bool {
	if f.SessionID != "" && h.SessionID != f.SessionID {
		return false
	}
	if len(f.RoomIDs) > 0 && !intersects(h.RoomIDs, f.RoomIDs) {
		return false
	}
	if f.ActiveAt != nil && !h.ExpiresAt.After(*f.ActiveAt) {
		return false
	}
	return f.Window.Overlaps(h.Start, h.End)
}

// Transactor runs work atomically. Repository calls made with the context
// passed to fn join the transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockRooms serializes writers claiming any of the rooms until the surrounding transaction ends.
	LockRooms(ctx context.Context, roomIDs []string) error
}

// BookingRepository stores confirmed bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	UpdateBooking(ctx context.Context, booking Booking) error
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// BlockedDateRepository stores administrative closures.
type BlockedDateRepository interface {
	CreateBlockedDate(ctx context.Context, blocked BlockedDate) error
	ListBlockedDates(ctx context.Context, filter BlockedDateFilter) ([]BlockedDate, error)
	DeleteBlockedDate(ctx context.Context, id string) error
}

// HoldRepository stores session holds.
type HoldRepository interface {
	CreateHold(ctx context.Context, hold Hold) error
	GetHold(ctx context.Context, id string) (Hold, error)
	ListHolds(ctx context.Context, filter HoldFilter) ([]Hold, error)
	DeleteHold(ctx context.Context, id string) error
	// DeleteExpiredHolds removes holds with ExpiresAt at or before reference and reports how many were removed.
	DeleteExpiredHolds(ctx context.Context, reference time.Time) (int, error)
}

// Store is the full persistence contract implemented by every backend.
type Store interface {
	Transactor
	BookingRepository
	BlockedDateRepository
	HoldRepository
	Ping(ctx context.Context) error
	Close() error
}

func intersects(values, targets []string) bool {
	for _, v := range values {
		if slices.Contains(targets, v) {
			return true
		}
	}
	return false
}
