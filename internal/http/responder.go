package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/logging"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeBadRequest(ctx context.Context, w http.ResponseWriter, err error) {
	r.loggerFor(ctx).WarnContext(ctx, "malformed request", "error", err)
	r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
		ErrorCode: "BAD_REQUEST",
		Message:   message(LanguageFromContext(ctx), msgBadRequest),
	})
}

func (r responder) writeMissingSession(ctx context.Context, w http.ResponseWriter) {
	r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
		ErrorCode: "MISSING_SESSION",
		Message:   message(LanguageFromContext(ctx), msgMissingSession),
	})
}

// handleServiceError maps application errors onto status codes and localized bodies.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	lang := LanguageFromContext(ctx)
	if err == nil {
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{ErrorCode: "INTERNAL", Message: message(lang, msgInternal)})
		return
	}

	var (
		rangeErr    *application.InvalidRangeError
		conflictErr *application.ConflictError
		vErr        *application.ValidationError
	)
	switch {
	case errors.As(err, &rangeErr):
		resp := errorResponse{ErrorCode: "INVALID_RANGE", RoomID: rangeErr.RoomID}
		if rangeErr.RoomID != "" {
			resp.Message = message(lang, msgUnknownRoom, rangeErr.RoomID)
		} else {
			resp.Message = message(lang, msgInvalidRange, translateReason(lang, rangeErr.Reason))
		}
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &conflictErr):
		resp := errorResponse{ErrorCode: "CONFLICT", RoomID: conflictErr.RoomID, Status: string(conflictErr.Status)}
		if conflictErr.Date.IsZero() {
			resp.Message = message(lang, msgConcurrentBooking)
		} else {
			resp.Date = daterange.Format(conflictErr.Date)
			resp.Message = message(lang, msgConflict, conflictErr.RoomID, resp.Date)
		}
		r.writeJSON(ctx, w, http.StatusConflict, resp)
	case errors.Is(err, pricing.ErrMissingRate):
		r.loggerFor(ctx).ErrorContext(ctx, "pricing unavailable", "error", err)
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "PRICING_UNAVAILABLE",
			Message:   message(lang, msgPricingUnavailable),
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   message(lang, msgValidation),
			Errors:    localizeValidationErrors(lang, vErr),
		})
	case errors.Is(err, pricing.ErrInvalidInput):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   message(lang, msgValidation),
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: message(lang, msgNotFound)})
	case errors.Is(err, application.ErrForbidden):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{ErrorCode: "FORBIDDEN", Message: message(lang, msgForbidden)})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{ErrorCode: "INTERNAL", Message: message(lang, msgInternal)})
	}
}

// decode reads the body into dst and writes the error response itself on failure.
func (r responder) decode(ctx context.Context, w http.ResponseWriter, req *http.Request, dst any) bool {
	err := decodeRequest(w, req, dst)
	if err == nil {
		return true
	}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.handleServiceError(ctx, w, err)
		return false
	}
	r.writeBadRequest(ctx, w, err)
	return false
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.Resolve(ctx, r.logger)
}

func localizeValidationErrors(lang Language, vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateFieldMessage(lang, msg)
	}
	return translated
}

type errorResponse struct {
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	RoomID    string            `json:"room_id,omitempty"`
	Date      string            `json:"date,omitempty"`
	Status    string            `json:"status,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
