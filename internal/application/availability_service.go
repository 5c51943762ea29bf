package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

// AvailabilityService answers read-only availability questions against the store.
type AvailabilityService struct {
	repo     SnapshotReader
	property Property
	now      func() time.Time
	cache    *calendarCache
	opts     options
}

// NewAvailabilityService constructs the service. WithCalendarCache sizes its calendar cache.
func NewAvailabilityService(repo SnapshotReader, property Property, now func() time.Time, opts ...Option) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	o := newOptions(opts)
	return &AvailabilityService{
		repo:     repo,
		property: property,
		now:      now,
		cache:    newCalendarCache(o.cacheSize, o.cacheTTL),
		opts:     o,
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.opts.logger, "AvailabilityService", operation, attrs...)
}

// Invalidate drops every cached calendar.
func (s *AvailabilityService) Invalidate() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// Resolve reports the status of one room on one date. Holds owned by sessionID are ignored.
func (s *AvailabilityService) Resolve(ctx context.Context, date time.Time, roomID, sessionID string) (availability.Result, error) {
	if s == nil {
		return availability.Result{}, fmt.Errorf("AvailabilityService is nil")
	}
	if _, ok := s.property.Room(roomID); !ok {
		return availability.Result{}, &InvalidRangeError{RoomID: roomID, Reason: "unknown room"}
	}
	if date.IsZero() {
		return availability.Result{}, &InvalidRangeError{RoomID: roomID, Reason: "date is required"}
	}

	day := daterange.Day(date)
	snap, err := loadSnapshot(ctx, s.repo, s.property, []string{roomID}, day, day.AddDate(0, 0, 1), s.now())
	if err != nil {
		s.loggerWith(ctx, "Resolve", "room_id", roomID).
			ErrorContext(ctx, "failed to load availability", "error", err, "error_kind", ErrorKind(err))
		return availability.Result{}, err
	}
	return snap.Resolve(day, roomID, sessionID), nil
}

// Validate is a dry run of the check performed before every hold or booking write.
// A nil conflict means the candidate may be written right now.
func (s *AvailabilityService) Validate(ctx context.Context, params ValidateParams) (conflict *ConflictError, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Validate",
		"session_id", params.SessionID,
		"room_ids", params.RoomIDs,
		"exclude_booking_id", params.ExcludeBookingID,
	)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to validate booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if conflict != nil {
			logger.DebugContext(ctx, "candidate conflicts", "room_id", conflict.RoomID, "date", daterange.Format(conflict.Date))
		}
	}()

	start, end, err := validateRange(params.Start, params.End, 0)
	if err != nil {
		return
	}
	if err = validateRooms(s.property, params.RoomIDs); err != nil {
		return
	}

	snap, err := loadSnapshot(ctx, s.repo, s.property, params.RoomIDs, start, end, s.now())
	if err != nil {
		return
	}
	ex := availability.Exclusion{SessionID: params.SessionID, BookingID: params.ExcludeBookingID}
	if c := snap.Validate(start, end, params.RoomIDs, ex); c != nil {
		conflict = conflictFrom(c)
	}
	return
}

// Calendar resolves every room on every date of [from, to) for the given session.
// Cached calendars are shared; callers must not modify the returned maps.
func (s *AvailabilityService) Calendar(ctx context.Context, from, to time.Time, sessionID string) (cal Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}
	from, to, err = validateRange(from, to, maxCalendarDays)
	if err != nil {
		return
	}

	key := calendarCacheKey(from, to, sessionID)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	roomIDs := s.property.RoomIDs()
	snap, err := loadSnapshot(ctx, s.repo, s.property, roomIDs, from, to, s.now())
	if err != nil {
		s.loggerWith(ctx, "Calendar", "session_id", sessionID).
			ErrorContext(ctx, "failed to load calendar", "error", err, "error_kind", ErrorKind(err))
		return
	}

	cal = Calendar{From: from, To: to, Rooms: snap.Grid(from, to, roomIDs, sessionID)}
	s.cache.Store(key, cal, snap)
	return cal, nil
}
