package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

// BookingService prices, validates and persists bookings.
type BookingService struct {
	repo        BookingRepository
	property    Property
	idGenerator func() string
	now         func() time.Time
	opts        options
}

// NewBookingService constructs a booking service.
func NewBookingService(repo BookingRepository, property Property, idGenerator func() string, now func() time.Time, opts ...Option) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{repo: repo, property: property, idGenerator: idGenerator, now: now, opts: newOptions(opts)}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.opts.logger, "BookingService", operation, attrs...)
}

// stay is a validated booking candidate.
type stay struct {
	start   time.Time
	end     time.Time
	model   pricing.Model
	roomIDs []string
	rooms   []persistence.BookingRoom
	guests  pricing.GuestBreakdown
	quote   pricing.Quote
}

// QuotePrice prices a per-room or bulk candidate without writing anything.
func (s *BookingService) QuotePrice(ctx context.Context, params QuoteParams) (quote pricing.Quote, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	st, err := s.prepare(params.Start, params.End, params.Variant)
	if err != nil {
		if ErrorKind(err) == "missing_rate" {
			s.loggerWith(ctx, "QuotePrice").
				ErrorContext(ctx, "rate table incomplete", "error", err, "error_kind", ErrorKind(err))
		}
		return
	}
	return st.quote, nil
}

// CreateBooking validates the candidate against bookings, blocks and other sessions'
// holds, prices it and persists it. The caller's holds on the booked rooms and dates
// are released. The plaintext edit token is only returned here.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (result BookingResult, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking", "session_id", params.SessionID)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", result.Booking.ID).InfoContext(ctx, "booking created",
			"model", result.Booking.Model,
			"total_price", result.Booking.TotalPrice,
		)
	}()

	st, err := s.prepare(params.Start, params.End, params.Variant)
	if err != nil {
		return
	}
	contact, vErr := normalizeContact(params.Contact)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	token := s.opts.tokenGenerator()
	hash, err := HashEditToken(token, s.opts.tokenParams)
	if err != nil {
		err = fmt.Errorf("hash edit token: %w", err)
		return
	}

	now := s.now()
	booking := persistence.Booking{
		ID:              s.idGenerator(),
		EditTokenHash:   hash,
		Model:           st.model,
		Start:           st.start,
		End:             st.end,
		Rooms:           st.rooms,
		Guests:          st.guests,
		Contact:         contact,
		TotalPrice:      st.quote.Total,
		SettingsVersion: s.property.Fingerprint(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.checkLocked(txCtx, st, st.roomIDs, availability.Exclusion{SessionID: params.SessionID}, now); err != nil {
			return err
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return mapStoreError(err)
		}
		return s.releaseHolds(txCtx, params.SessionID, st)
	})
	if err != nil {
		return
	}
	s.opts.invalidate()

	result = BookingResult{Booking: booking, EditToken: token}
	return
}

// UpdateBooking replaces dates, rooms, guests and contact of an existing booking.
// The booking does not conflict with its own previous dates.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking persistence.Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBooking", "booking_id", params.BookingID, "session_id", params.SessionID)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking updated", "total_price", booking.TotalPrice)
	}()

	existing, err := s.authorize(ctx, params.BookingID, params.EditToken)
	if err != nil {
		return
	}
	st, err := s.prepare(params.Start, params.End, params.Variant)
	if err != nil {
		return
	}
	contact, vErr := normalizeContact(params.Contact)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	updated := existing
	updated.Model = st.model
	updated.Start, updated.End = st.start, st.end
	updated.Rooms = st.rooms
	updated.Guests = st.guests
	updated.Contact = contact
	updated.TotalPrice = st.quote.Total
	updated.SettingsVersion = s.property.Fingerprint()
	updated.UpdatedAt = now

	ex := availability.Exclusion{SessionID: params.SessionID, BookingID: existing.ID}
	lockIDs := slices.Concat(existing.RoomIDs(), st.roomIDs)
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.checkLocked(txCtx, st, lockIDs, ex, now); err != nil {
			return err
		}
		if err := s.repo.UpdateBooking(txCtx, updated); err != nil {
			return mapStoreError(err)
		}
		return s.releaseHolds(txCtx, params.SessionID, st)
	})
	if err != nil {
		return
	}
	s.opts.invalidate()

	booking = updated
	return
}

// CancelBooking deletes a booking for the holder of its edit token.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, editToken string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "CancelBooking", "booking_id", bookingID)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	if _, err = s.authorize(ctx, bookingID, editToken); err != nil {
		return
	}
	if err = s.repo.DeleteBooking(ctx, bookingID); err != nil {
		err = mapStoreError(err)
		return
	}
	s.opts.invalidate()
	return nil
}

// GetBooking returns a booking to the holder of its edit token.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, editToken string) (persistence.Booking, error) {
	if s == nil {
		return persistence.Booking{}, fmt.Errorf("BookingService is nil")
	}
	return s.authorize(ctx, bookingID, editToken)
}

func (s *BookingService) authorize(ctx context.Context, bookingID, editToken string) (persistence.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return persistence.Booking{}, mapStoreError(err)
	}
	if err := VerifyEditToken(booking.EditTokenHash, editToken); err != nil {
		if errors.Is(err, ErrForbidden) {
			return persistence.Booking{}, ErrForbidden
		}
		return persistence.Booking{}, fmt.Errorf("verify edit token: %w", err)
	}
	return booking, nil
}

// prepare validates a candidate and prices it.
func (s *BookingService) prepare(start, end time.Time, variant BookingVariant) (stay, error) {
	var (
		st  stay
		err error
	)
	st.start, st.end, err = validateRange(start, end, s.opts.maxStayNights)
	if err != nil {
		return stay{}, err
	}
	nights := daterange.Nights(st.start, st.end)

	var req pricing.Request
	switch v := variant.(type) {
	case PerRoomBooking:
		st.model = v.pricingModel()
		for _, r := range v.Rooms {
			st.roomIDs = append(st.roomIDs, r.RoomID)
		}
		if err := validateRooms(s.property, st.roomIDs); err != nil {
			return stay{}, err
		}
		vErr := &ValidationError{}
		perRoom := pricing.PerRoomRequest{Nights: nights}
		for i, r := range v.Rooms {
			vErr.merge(validateGuests(s.property, fmt.Sprintf("rooms[%d].guests", i), r.Guests, []string{r.RoomID}))
			room, _ := s.property.Room(r.RoomID)
			perRoom.Rooms = append(perRoom.Rooms, pricing.RoomGuests{RoomID: r.RoomID, Size: room.Size, Guests: r.Guests})
			st.rooms = append(st.rooms, persistence.BookingRoom{RoomID: r.RoomID, Guests: r.Guests})
			st.guests = st.guests.Add(r.Guests)
		}
		if vErr.HasErrors() {
			return stay{}, vErr
		}
		req = perRoom
	case BulkBooking:
		st.model = v.pricingModel()
		st.roomIDs = s.property.RoomIDs()
		if vErr := validateGuests(s.property, "guests", v.Guests, st.roomIDs); vErr.HasErrors() {
			return stay{}, vErr
		}
		for _, id := range st.roomIDs {
			st.rooms = append(st.rooms, persistence.BookingRoom{RoomID: id})
		}
		st.guests = v.Guests
		req = pricing.BulkRequest{Nights: nights, Guests: v.Guests}
	default:
		vErr := &ValidationError{}
		vErr.add("model", "booking must be per_room or bulk")
		return stay{}, vErr
	}

	if st.guests.Adults() == 0 {
		vErr := &ValidationError{}
		vErr.add("guests", "at least one adult is required")
		return stay{}, vErr
	}

	st.quote, err = s.property.Calculator().Calculate(req)
	if err != nil {
		return stay{}, err
	}
	return st, nil
}

// checkLocked locks lockIDs and validates the candidate against a fresh snapshot.
func (s *BookingService) checkLocked(ctx context.Context, st stay, lockIDs []string, ex availability.Exclusion, now time.Time) error {
	if err := s.repo.LockRooms(ctx, lockIDs); err != nil {
		return err
	}
	snap, err := loadSnapshot(ctx, s.repo, s.property, st.roomIDs, st.start, st.end, now)
	if err != nil {
		return err
	}
	if c := snap.Validate(st.start, st.end, st.roomIDs, ex); c != nil {
		return conflictFrom(c)
	}
	return nil
}

// releaseHolds deletes the session's holds on the booked rooms and dates.
func (s *BookingService) releaseHolds(ctx context.Context, sessionID string, st stay) error {
	if sessionID == "" {
		return nil
	}
	holds, err := s.repo.ListHolds(ctx, persistence.HoldFilter{
		SessionID: sessionID,
		RoomIDs:   st.roomIDs,
		Window:    persistence.NewWindow(st.start, st.end),
	})
	if err != nil {
		return fmt.Errorf("list session holds: %w", err)
	}
	for _, h := range holds {
		if err := s.repo.DeleteHold(ctx, h.ID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("release hold %s: %w", h.ID, err)
		}
	}
	return nil
}
