package application

import (
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

// CreateHoldParams describes a tentative selection made by a browsing session.
type CreateHoldParams struct {
	SessionID string
	Start     time.Time
	End       time.Time
	RoomIDs   []string
	Guests    pricing.GuestBreakdown
	// Price is the provisional total shown to the visitor while the hold lives.
	Price int64
}

// RoomStay is one room of a per-room booking with its occupants.
type RoomStay struct {
	RoomID string
	Guests pricing.GuestBreakdown
}

// BookingVariant selects between a per-room and a whole-property booking.
// It is implemented by PerRoomBooking and BulkBooking only.
type BookingVariant interface {
	pricingModel() pricing.Model
}

// PerRoomBooking books the listed rooms, each priced on its own.
type PerRoomBooking struct {
	Rooms []RoomStay
}

func (PerRoomBooking) pricingModel() pricing.Model { return pricing.ModelPerRoom }

// BulkBooking books every room of the property as one unit.
type BulkBooking struct {
	Guests pricing.GuestBreakdown
}

func (BulkBooking) pricingModel() pricing.Model { return pricing.ModelBulk }

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	SessionID string
	Start     time.Time
	End       time.Time
	Variant   BookingVariant
	Contact   persistence.Contact
}

// UpdateBookingParams wraps the data required to edit a booking.
type UpdateBookingParams struct {
	BookingID string
	EditToken string
	SessionID string
	Start     time.Time
	End       time.Time
	Variant   BookingVariant
	Contact   persistence.Contact
}

// QuoteParams asks for a price without writing anything.
type QuoteParams struct {
	Start   time.Time
	End     time.Time
	Variant BookingVariant
}

// BookingResult is returned on creation. EditToken is only ever available here.
type BookingResult struct {
	Booking   persistence.Booking
	EditToken string
}

// ValidateParams is a dry-run availability check.
type ValidateParams struct {
	Start            time.Time
	End              time.Time
	RoomIDs          []string
	ExcludeBookingID string
	SessionID        string
}

// Calendar is the status of every room on every date in [From, To), keyed by room id then YYYY-MM-DD.
type Calendar struct {
	From  time.Time
	To    time.Time
	Rooms map[string]map[string]availability.Result
}
