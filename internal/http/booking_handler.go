package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

type bookingService interface {
	QuotePrice(ctx context.Context, params application.QuoteParams) (pricing.Quote, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.BookingResult, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (persistence.Booking, error)
	CancelBooking(ctx context.Context, bookingID, editToken string) error
	GetBooking(ctx context.Context, bookingID, editToken string) (persistence.Booking, error)
}

// BookingHandler serves quotes and booking writes. Reads and edits of an
// existing booking require its edit token in X-Edit-Token.
type BookingHandler struct {
	service bookingService
	responder
	logger *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stayRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	start, end, variant, err := req.stay()
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	quote, err := h.service.QuotePrice(ctx, application.QuoteParams{Start: start, End: end, Variant: variant})
	if err != nil {
		handlerLogger(ctx, h.logger, "BookingHandler", "Quote").WarnContext(ctx, "failed to quote price", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, quote)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionIDFromContext(ctx)
	logger := handlerLogger(ctx, h.logger, "BookingHandler", "Create", "session_id", sessionID)

	var req stayRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	start, end, variant, err := req.stay()
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	result, err := h.service.CreateBooking(ctx, application.CreateBookingParams{
		SessionID: sessionID,
		Start:     start,
		End:       end,
		Variant:   variant,
		Contact:   req.contact(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to create booking", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "booking created", "booking_id", result.Booking.ID)
	resp := newBookingResponse(result.Booking)
	resp.EditToken = result.EditToken
	w.Header().Set("Location", "/bookings/"+result.Booking.ID)
	h.writeJSON(ctx, w, http.StatusCreated, resp)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "bookingID")

	booking, err := h.service.GetBooking(ctx, bookingID, r.Header.Get(editTokenHeader))
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, newBookingResponse(booking))
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "bookingID")
	sessionID := SessionIDFromContext(ctx)
	logger := handlerLogger(ctx, h.logger, "BookingHandler", "Update", "booking_id", bookingID)

	var req stayRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	start, end, variant, err := req.stay()
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	booking, err := h.service.UpdateBooking(ctx, application.UpdateBookingParams{
		BookingID: bookingID,
		EditToken: r.Header.Get(editTokenHeader),
		SessionID: sessionID,
		Start:     start,
		End:       end,
		Variant:   variant,
		Contact:   req.contact(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to update booking", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, newBookingResponse(booking))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookingID := chi.URLParam(r, "bookingID")

	if err := h.service.CancelBooking(ctx, bookingID, r.Header.Get(editTokenHeader)); err != nil {
		handlerLogger(ctx, h.logger, "BookingHandler", "Cancel", "booking_id", bookingID).
			WarnContext(ctx, "failed to cancel booking", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusNoContent, nil)
}
