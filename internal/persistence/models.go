package persistence

import (
	"time"

	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

// Contact holds booking holder details. The core treats them as opaque.
type Contact struct {
	Name  string
	Email string
	Phone string
	Note  string
}

// BookingRoom is one room of a booking with its occupants.
type BookingRoom struct {
	RoomID string
	Guests pricing.GuestBreakdown
}

// Booking is a confirmed reservation over [Start, End).
type Booking struct {
	ID            string
	EditTokenHash string
	Model         pricing.Model
	Start         time.Time
	End           time.Time
	// Rooms lists every claimed room. Bulk bookings list all rooms with zero guests.
	Rooms []BookingRoom
	// Guests is the booking total; for bulk bookings it is the priced breakdown.
	Guests          pricing.GuestBreakdown
	Contact         Contact
	TotalPrice      int64
	SettingsVersion string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoomIDs returns the ids of the booked rooms.
func (b Booking) RoomIDs() []string {
	ids := make([]string, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		ids = append(ids, r.RoomID)
	}
	return ids
}

// BlockedDate closes one room (or all rooms with RoomID "*") for one date.
type BlockedDate struct {
	ID        string
	RoomID    string
	Date      time.Time
	Reason    string
	CreatedAt time.Time
}

// Hold is a session-owned soft reservation. Holds are never updated.
type Hold struct {
	ID        string
	SessionID string
	RoomIDs   []string
	Start     time.Time
	End       time.Time
	Guests    pricing.GuestBreakdown
	Price     int64
	CreatedAt time.Time
	ExpiresAt time.Time
}
