// Package availability answers whether a room is free on a date.
//
// A Snapshot holds the bookings, administrative blocks and holds relevant to
// the rooms and dates being asked about, together with the instant at which
// hold expiry is judged. Resolution is pure; loading the snapshot is the
// caller's job.
package availability

import (
	"slices"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

// Status is the state of one room on one date.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
	StatusProposed  Status = "proposed"
)

// AllRooms is the BlockedDate room id that matches every room.
const AllRooms = "*"

// Booking is a confirmed reservation as seen by the resolver.
type Booking struct {
	ID string
	// ContactKey identifies the booking holder for calendar colouring without exposing contact details.
	ContactKey string
	RoomIDs    []string
	Start      time.Time
	End        time.Time
}

// Block is an administrative closure of one room, or of all rooms, on one date.
type Block struct {
	RoomID string
	Date   time.Time
	Reason string
}

// Hold is a session-owned soft reservation.
type Hold struct {
	ID        string
	SessionID string
	RoomIDs   []string
	Start     time.Time
	End       time.Time
	ExpiresAt time.Time
}

// ActiveAt reports whether the hold has not yet expired at now.
func (h Hold) ActiveAt(now time.Time) bool {
	return h.ExpiresAt.After(now)
}

// Snapshot is the state the resolver consults.
type Snapshot struct {
	Bookings []Booking
	Blocks   []Block
	Holds    []Hold
	Now      time.Time
}

// Exclusion names entries that must not count against a candidate.
type Exclusion struct {
	// SessionID hides holds owned by the caller.
	SessionID string
	// BookingID hides the booking being edited.
	BookingID string
}

// Detail carries the source of a non-available status.
type Detail struct {
	BookingID  string    `json:"booking_id,omitempty"`
	ContactKey string    `json:"contact_key,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	ProposalID string    `json:"proposal_id,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitzero"`
}

// Result is the answer for one (date, room) pair.
type Result struct {
	Status Status `json:"status"`
	Detail Detail `json:"detail"`
}

// Resolve returns the status of roomID on date. Holds owned by excludeSessionID are ignored.
func (s Snapshot) Resolve(date time.Time, roomID, excludeSessionID string) Result {
	return s.ResolveExcluding(date, roomID, Exclusion{SessionID: excludeSessionID})
}

// ResolveExcluding applies the precedence booked, blocked, proposed, available.
func (s Snapshot) ResolveExcluding(date time.Time, roomID string, ex Exclusion) Result {
	day := daterange.Day(date)

	for _, b := range s.Bookings {
		if ex.BookingID != "" && b.ID == ex.BookingID {
			continue
		}
		if slices.Contains(b.RoomIDs, roomID) && daterange.Contains(b.Start, b.End, day) {
			return Result{Status: StatusBooked, Detail: Detail{BookingID: b.ID, ContactKey: b.ContactKey}}
		}
	}

	for _, blk := range s.Blocks {
		if (blk.RoomID == roomID || blk.RoomID == AllRooms) && daterange.Day(blk.Date).Equal(day) {
			return Result{Status: StatusBlocked, Detail: Detail{Reason: blk.Reason}}
		}
	}

	for _, h := range s.Holds {
		if !h.ActiveAt(s.Now) {
			continue
		}
		if ex.SessionID != "" && h.SessionID == ex.SessionID {
			continue
		}
		if slices.Contains(h.RoomIDs, roomID) && daterange.Contains(h.Start, h.End, day) {
			return Result{Status: StatusProposed, Detail: Detail{ProposalID: h.ID, ExpiresAt: h.ExpiresAt}}
		}
	}

	return Result{Status: StatusAvailable}
}
