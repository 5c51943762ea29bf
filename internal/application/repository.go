package application

import (
	"context"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

// SnapshotReader loads what the resolver needs.
type SnapshotReader interface {
	ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error)
	ListBlockedDates(ctx context.Context, filter persistence.BlockedDateFilter) ([]persistence.BlockedDate, error)
	ListHolds(ctx context.Context, filter persistence.HoldFilter) ([]persistence.Hold, error)
}

// HoldRepository is the storage surface of the hold manager.
type HoldRepository interface {
	persistence.Transactor
	SnapshotReader
	CreateHold(ctx context.Context, hold persistence.Hold) error
	GetHold(ctx context.Context, id string) (persistence.Hold, error)
	DeleteHold(ctx context.Context, id string) error
	DeleteExpiredHolds(ctx context.Context, reference time.Time) (int, error)
}

// BookingRepository is the storage surface of the booking service.
type BookingRepository interface {
	persistence.Transactor
	SnapshotReader
	CreateBooking(ctx context.Context, booking persistence.Booking) error
	UpdateBooking(ctx context.Context, booking persistence.Booking) error
	GetBooking(ctx context.Context, id string) (persistence.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	DeleteHold(ctx context.Context, id string) error
}

// Property is the read-only description of rooms and rates.
type Property interface {
	Room(id string) (settings.Room, bool)
	RoomIDs() []string
	Calculator() *pricing.Calculator
	SeedBlocks() []availability.Block
	Fingerprint() string
}

// CacheInvalidator is notified after this process writes a hold or booking.
type CacheInvalidator interface {
	Invalidate()
}

var _ Property = (*settings.Settings)(nil)
