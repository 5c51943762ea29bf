package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/settings"
)

type availabilityService interface {
	Resolve(ctx context.Context, date time.Time, roomID, sessionID string) (availability.Result, error)
	Validate(ctx context.Context, params application.ValidateParams) (*application.ConflictError, error)
	Calendar(ctx context.Context, from, to time.Time, sessionID string) (application.Calendar, error)
}

type roomCatalog interface {
	RoomIDs() []string
	Room(id string) (settings.Room, bool)
}

// AvailabilityHandler serves room, availability and calendar reads.
type AvailabilityHandler struct {
	service availabilityService
	rooms   roomCatalog
	responder
	logger *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, rooms roomCatalog, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, rooms: rooms, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids := h.rooms.RoomIDs()
	out := make([]settings.Room, 0, len(ids))
	for _, id := range ids {
		if room, ok := h.rooms.Room(id); ok {
			out = append(out, room)
		}
	}
	h.writeJSON(ctx, w, http.StatusOK, out)
}

func (h *AvailabilityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	roomID := query.Get("room")
	logger := handlerLogger(ctx, h.logger, "AvailabilityHandler", "Resolve", "room_id", roomID)

	vErr := &application.ValidationError{}
	date, err := daterange.Parse(query.Get("date"))
	if err != nil {
		addFieldError(vErr, "date", msgBadDate)
	}
	if roomID == "" {
		addFieldError(vErr, "room", "required")
	}
	if err := validationResult(vErr); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	result, err := h.service.Resolve(ctx, date, roomID, SessionIDFromContext(ctx))
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve availability", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, availabilityResponse{
		Date:   daterange.Format(date),
		RoomID: roomID,
		Status: result.Status,
		Detail: result.Detail,
	})
}

func (h *AvailabilityHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	logger := handlerLogger(ctx, h.logger, "AvailabilityHandler", "Calendar")

	vErr := &application.ValidationError{}
	from, err := daterange.Parse(query.Get("from"))
	if err != nil {
		addFieldError(vErr, "from", msgBadDate)
	}
	to, err := daterange.Parse(query.Get("to"))
	if err != nil {
		addFieldError(vErr, "to", msgBadDate)
	}
	if err := validationResult(vErr); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	cal, err := h.service.Calendar(ctx, from, to, SessionIDFromContext(ctx))
	if err != nil {
		logger.WarnContext(ctx, "failed to build calendar", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, calendarResponse{
		From:  daterange.Format(cal.From),
		To:    daterange.Format(cal.To),
		Rooms: cal.Rooms,
	})
}

// Validate reports the first conflict of a prospective stay without writing anything.
func (h *AvailabilityHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "AvailabilityHandler", "Validate")

	var req validateRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	vErr := &application.ValidationError{}
	start, end := parseDates(vErr, req.Start, req.End)
	if err := validationResult(vErr); err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	conflict, err := h.service.Validate(ctx, application.ValidateParams{
		Start:            start,
		End:              end,
		RoomIDs:          req.RoomIDs,
		ExcludeBookingID: req.ExcludeBookingID,
		SessionID:        SessionIDFromContext(ctx),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to validate stay", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	if conflict == nil {
		h.writeJSON(ctx, w, http.StatusOK, validateResponse{OK: true})
		return
	}
	resp := &conflictResponse{RoomID: conflict.RoomID, Status: conflict.Status, Reason: conflict.Reason}
	if !conflict.Date.IsZero() {
		resp.Date = daterange.Format(conflict.Date)
	}
	h.writeJSON(ctx, w, http.StatusOK, validateResponse{OK: false, Conflict: resp})
}
