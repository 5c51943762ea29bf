// Package memory provides an in-process persistence.Store.
//
// A single mutex guards all state. WithTx holds it for the whole transaction,
// so every check-then-write sequence run inside WithTx is atomic with respect
// to other callers. Failed transactions restore the state they started from.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

type txKey struct{}

// Storage is an in-memory persistence.Store.
type Storage struct {
	mu       sync.Mutex
	bookings map[string]persistence.Booking
	blocked  map[string]persistence.BlockedDate
	holds    map[string]persistence.Hold
}

var _ persistence.Store = (*Storage)(nil)

// Open returns an empty store.
func Open() *Storage {
	return &Storage{
		bookings: make(map[string]persistence.Booking),
		blocked:  make(map[string]persistence.BlockedDate),
		holds:    make(map[string]persistence.Hold),
	}
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// WithTx runs fn while holding the store lock. Nested calls reuse the outer transaction.
func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bookings := maps.Clone(s.bookings)
	blocked := maps.Clone(s.blocked)
	holds := maps.Clone(s.holds)

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.bookings, s.blocked, s.holds = bookings, blocked, holds
		return err
	}
	return nil
}

// LockRooms is satisfied by the transaction lock.
func (s *Storage) LockRooms(ctx context.Context, _ []string) error {
	if !s.inTx(ctx) {
		return fmt.Errorf("memory: LockRooms called outside a transaction")
	}
	return nil
}

func (s *Storage) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Storage)
	return owner == s
}

func (s *Storage) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// --- BookingRepository implementation ---

// CreateBooking stores a new booking.
func (s *Storage) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	defer s.lock(ctx)()

	if _, ok := s.bookings[booking.ID]; ok {
		return fmt.Errorf("memory: booking %s: %w", booking.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureRoomsFreeLocked(booking); err != nil {
		return err
	}
	s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

// UpdateBooking replaces an existing booking.
func (s *Storage) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	defer s.lock(ctx)()

	if _, ok := s.bookings[booking.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureRoomsFreeLocked(booking); err != nil {
		return err
	}
	s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

// GetBooking retrieves a booking by id.
func (s *Storage) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	defer s.lock(ctx)()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return cloneBooking(booking), nil
}

// ListBookings returns matching bookings ordered by start date.
func (s *Storage) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	defer s.lock(ctx)()

	out := make([]persistence.Booking, 0)
	for _, b := range s.bookings {
		if filter.Matches(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// DeleteBooking removes a booking.
func (s *Storage) DeleteBooking(ctx context.Context, id string) error {
	defer s.lock(ctx)()

	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// ensureRoomsFreeLocked mirrors the exclusion constraint of the SQL stores.
func (s *Storage) ensureRoomsFreeLocked(booking persistence.Booking) error {
	filter := persistence.BookingFilter{
		RoomIDs: booking.RoomIDs(),
		Window:  persistence.NewWindow(booking.Start, booking.End),
	}
	for _, other := range s.bookings {
		if other.ID == booking.ID {
			continue
		}
		if filter.Matches(other) {
			return fmt.Errorf("memory: booking %s overlaps %s: %w", booking.ID, other.ID, persistence.ErrConflict)
		}
	}
	return nil
}

// --- BlockedDateRepository implementation ---

// CreateBlockedDate stores a closure. A second closure of the same room and date is a duplicate.
func (s *Storage) CreateBlockedDate(ctx context.Context, blocked persistence.BlockedDate) error {
	defer s.lock(ctx)()

	if _, ok := s.blocked[blocked.ID]; ok {
		return fmt.Errorf("memory: blocked date %s: %w", blocked.ID, persistence.ErrDuplicate)
	}
	for _, existing := range s.blocked {
		if existing.RoomID == blocked.RoomID && existing.Date.Equal(blocked.Date) {
			return fmt.Errorf("memory: room %s already blocked: %w", blocked.RoomID, persistence.ErrDuplicate)
		}
	}
	s.blocked[blocked.ID] = blocked
	return nil
}

// ListBlockedDates returns matching closures ordered by date.
func (s *Storage) ListBlockedDates(ctx context.Context, filter persistence.BlockedDateFilter) ([]persistence.BlockedDate, error) {
	defer s.lock(ctx)()

	out := make([]persistence.BlockedDate, 0)
	for _, b := range s.blocked {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// DeleteBlockedDate removes a closure.
func (s *Storage) DeleteBlockedDate(ctx context.Context, id string) error {
	defer s.lock(ctx)()

	if _, ok := s.blocked[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.blocked, id)
	return nil
}

// --- HoldRepository implementation ---

// CreateHold stores a hold.
func (s *Storage) CreateHold(ctx context.Context, hold persistence.Hold) error {
	defer s.lock(ctx)()

	if _, ok := s.holds[hold.ID]; ok {
		return fmt.Errorf("memory: hold %s: %w", hold.ID, persistence.ErrDuplicate)
	}
	s.holds[hold.ID] = cloneHold(hold)
	return nil
}

// GetHold retrieves a hold by id, expired or not.
func (s *Storage) GetHold(ctx context.Context, id string) (persistence.Hold, error) {
	defer s.lock(ctx)()

	hold, ok := s.holds[id]
	if !ok {
		return persistence.Hold{}, persistence.ErrNotFound
	}
	return cloneHold(hold), nil
}

// ListHolds returns matching holds ordered by creation time.
func (s *Storage) ListHolds(ctx context.Context, filter persistence.HoldFilter) ([]persistence.Hold, error) {
	defer s.lock(ctx)()

	out := make([]persistence.Hold, 0)
	for _, h := range s.holds {
		if filter.Matches(h) {
			out = append(out, cloneHold(h))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteHold removes a hold.
func (s *Storage) DeleteHold(ctx context.Context, id string) error {
	defer s.lock(ctx)()

	if _, ok := s.holds[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.holds, id)
	return nil
}

// DeleteExpiredHolds removes every hold expired at reference.
func (s *Storage) DeleteExpiredHolds(ctx context.Context, reference time.Time) (int, error) {
	defer s.lock(ctx)()

	removed := 0
	for id, h := range s.holds {
		if !h.ExpiresAt.After(reference) {
			delete(s.holds, id)
			removed++
		}
	}
	return removed, nil
}

func cloneBooking(b persistence.Booking) persistence.Booking {
	b.Rooms = slices.Clone(b.Rooms)
	return b
}

func cloneHold(h persistence.Hold) persistence.Hold {
	h.RoomIDs = slices.Clone(h.RoomIDs)
	return h
}
