package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

type holdService interface {
	CreateHold(ctx context.Context, params application.CreateHoldParams) (persistence.Hold, error)
	ReplaceHold(ctx context.Context, sessionID, oldProposalID string, params application.CreateHoldParams) (persistence.Hold, error)
	DeleteHold(ctx context.Context, sessionID, proposalID string) error
	ListActiveHolds(ctx context.Context, sessionID string) ([]persistence.Hold, error)
	ReapExpired(ctx context.Context) (int, error)
}

// HoldHandler manages the holds of the calling session.
type HoldHandler struct {
	service holdService
	responder
	logger *slog.Logger
}

func NewHoldHandler(service holdService, logger *slog.Logger) *HoldHandler {
	base := defaultLogger(logger)
	return &HoldHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *HoldHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		h.writeMissingSession(ctx, w)
		return
	}
	logger := handlerLogger(ctx, h.logger, "HoldHandler", "Create", "session_id", sessionID)

	var req holdRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	params, err := req.params(sessionID)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	hold, err := h.service.CreateHold(ctx, params)
	if err != nil {
		logger.WarnContext(ctx, "failed to create hold", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	logger.InfoContext(ctx, "hold created", "proposal_id", hold.ID)
	h.writeJSON(ctx, w, http.StatusCreated, newHoldResponse(hold))
}

func (h *HoldHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		h.writeMissingSession(ctx, w)
		return
	}

	holds, err := h.service.ListActiveHolds(ctx, sessionID)
	if err != nil {
		handlerLogger(ctx, h.logger, "HoldHandler", "List", "session_id", sessionID).
			ErrorContext(ctx, "failed to list holds", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	out := make([]holdResponse, 0, len(holds))
	for _, hold := range holds {
		out = append(out, newHoldResponse(hold))
	}
	h.writeJSON(ctx, w, http.StatusOK, out)
}

// Replace swaps an existing hold for a new selection atomically.
func (h *HoldHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		h.writeMissingSession(ctx, w)
		return
	}
	proposalID := chi.URLParam(r, "proposalID")
	logger := handlerLogger(ctx, h.logger, "HoldHandler", "Replace", "session_id", sessionID, "proposal_id", proposalID)

	var req holdRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}
	params, err := req.params(sessionID)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}

	hold, err := h.service.ReplaceHold(ctx, sessionID, proposalID, params)
	if err != nil {
		logger.WarnContext(ctx, "failed to replace hold", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, newHoldResponse(hold))
}

func (h *HoldHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := SessionIDFromContext(ctx)
	if sessionID == "" {
		h.writeMissingSession(ctx, w)
		return
	}
	proposalID := chi.URLParam(r, "proposalID")

	if err := h.service.DeleteHold(ctx, sessionID, proposalID); err != nil {
		handlerLogger(ctx, h.logger, "HoldHandler", "Delete", "proposal_id", proposalID).
			WarnContext(ctx, "failed to delete hold", "error", err)
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// Reap removes every expired hold regardless of session.
func (h *HoldHandler) Reap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	removed, err := h.service.ReapExpired(ctx)
	if err != nil {
		h.handleServiceError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, reapResponse{Removed: removed})
}
