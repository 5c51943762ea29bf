package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

// HoldService creates, lists and expires session-owned holds.
type HoldService struct {
	repo        HoldRepository
	property    Property
	idGenerator func() string
	now         func() time.Time
	opts        options
}

// NewHoldService constructs a hold manager. Holds live for WithHoldTTL (15 minutes by default).
func NewHoldService(repo HoldRepository, property Property, idGenerator func() string, now func() time.Time, opts ...Option) *HoldService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &HoldService{repo: repo, property: property, idGenerator: idGenerator, now: now, opts: newOptions(opts)}
}

// TTL returns the lifetime given to new holds.
func (s *HoldService) TTL() time.Duration {
	return s.opts.holdTTL
}

func (s *HoldService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.opts.logger, "HoldService", operation, attrs...)
}

// CreateHold checks that every room is free on every date of the range, ignoring
// the caller's own holds, and persists a hold expiring TTL from now. The check and
// the insert run in one transaction with the rooms locked.
func (s *HoldService) CreateHold(ctx context.Context, params CreateHoldParams) (hold persistence.Hold, err error) {
	if s == nil {
		err = fmt.Errorf("HoldService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateHold",
		"session_id", params.SessionID,
		"room_ids", params.RoomIDs,
	)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to create hold", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("proposal_id", hold.ID).InfoContext(ctx, "hold created", "expires_at", hold.ExpiresAt)
	}()

	params, err = s.normalize(params)
	if err != nil {
		return
	}

	now := s.now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		hold, txErr = s.createLocked(txCtx, params, now)
		return txErr
	})
	if err != nil {
		hold = persistence.Hold{}
		return
	}
	s.opts.invalidate()
	return
}

// ReplaceHold deletes oldProposalID and creates a new hold in one transaction.
// When the new hold cannot be created the old one stays in place.
func (s *HoldService) ReplaceHold(ctx context.Context, sessionID, oldProposalID string, params CreateHoldParams) (hold persistence.Hold, err error) {
	if s == nil {
		err = fmt.Errorf("HoldService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ReplaceHold",
		"session_id", sessionID,
		"replaced_proposal_id", oldProposalID,
	)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to replace hold", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("proposal_id", hold.ID).InfoContext(ctx, "hold replaced", "expires_at", hold.ExpiresAt)
	}()

	params.SessionID = sessionID
	params, err = s.normalize(params)
	if err != nil {
		return
	}

	now := s.now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.deleteOwned(txCtx, sessionID, oldProposalID); err != nil {
			return err
		}
		var txErr error
		hold, txErr = s.createLocked(txCtx, params, now)
		return txErr
	})
	if err != nil {
		hold = persistence.Hold{}
		return
	}
	s.opts.invalidate()
	return
}

// DeleteHold removes a hold owned by sessionID. Missing holds are not an error;
// holds of another session are ErrForbidden.
func (s *HoldService) DeleteHold(ctx context.Context, sessionID, proposalID string) (err error) {
	if s == nil {
		return fmt.Errorf("HoldService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteHold", "session_id", sessionID, "proposal_id", proposalID)
	defer func() {
		if err != nil {
			logger.Log(ctx, failureLevel(err), "failed to delete hold", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "hold deleted")
	}()

	if err = requireSession(sessionID); err != nil {
		return
	}
	if err = s.deleteOwned(ctx, sessionID, proposalID); err != nil {
		return
	}
	s.opts.invalidate()
	return nil
}

// ListActiveHolds returns the session's holds that have not expired.
func (s *HoldService) ListActiveHolds(ctx context.Context, sessionID string) ([]persistence.Hold, error) {
	if s == nil {
		return nil, fmt.Errorf("HoldService is nil")
	}
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	now := s.now()
	holds, err := s.repo.ListHolds(ctx, persistence.HoldFilter{SessionID: sessionID, ActiveAt: &now})
	if err != nil {
		s.loggerWith(ctx, "ListActiveHolds", "session_id", sessionID).
			ErrorContext(ctx, "failed to list holds", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return holds, nil
}

// ReapExpired deletes every hold whose expiry is at or before now. Resolution
// already ignores such holds, so this only reclaims storage.
func (s *HoldService) ReapExpired(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("HoldService is nil")
	}
	removed, err := s.repo.DeleteExpiredHolds(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("reap expired holds: %w", err)
	}
	if removed > 0 {
		s.opts.invalidate()
	}
	return removed, nil
}

func (s *HoldService) normalize(params CreateHoldParams) (CreateHoldParams, error) {
	if err := requireSession(params.SessionID); err != nil {
		return params, err
	}
	var err error
	params.Start, params.End, err = validateRange(params.Start, params.End, s.opts.maxStayNights)
	if err != nil {
		return params, err
	}
	if err := validateRooms(s.property, params.RoomIDs); err != nil {
		return params, err
	}
	vErr := validateGuests(s.property, "guests", params.Guests, params.RoomIDs)
	if params.Price < 0 {
		vErr.add("price", "price must not be negative")
	}
	if vErr.HasErrors() {
		return params, vErr
	}
	return params, nil
}

func (s *HoldService) createLocked(ctx context.Context, params CreateHoldParams, now time.Time) (persistence.Hold, error) {
	if err := s.repo.LockRooms(ctx, params.RoomIDs); err != nil {
		return persistence.Hold{}, err
	}
	snap, err := loadSnapshot(ctx, s.repo, s.property, params.RoomIDs, params.Start, params.End, now)
	if err != nil {
		return persistence.Hold{}, err
	}
	if c := snap.Validate(params.Start, params.End, params.RoomIDs, availability.Exclusion{SessionID: params.SessionID}); c != nil {
		return persistence.Hold{}, conflictFrom(c)
	}

	hold := persistence.Hold{
		ID:        s.idGenerator(),
		SessionID: params.SessionID,
		RoomIDs:   append([]string(nil), params.RoomIDs...),
		Start:     params.Start,
		End:       params.End,
		Guests:    params.Guests,
		Price:     params.Price,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.holdTTL),
	}
	if err := s.repo.CreateHold(ctx, hold); err != nil {
		return persistence.Hold{}, mapStoreError(err)
	}
	return hold, nil
}

func (s *HoldService) deleteOwned(ctx context.Context, sessionID, proposalID string) error {
	hold, err := s.repo.GetHold(ctx, proposalID)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if hold.SessionID != sessionID {
		return ErrForbidden
	}
	if err := s.repo.DeleteHold(ctx, proposalID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	return nil
}

func requireSession(sessionID string) error {
	if sessionID == "" {
		vErr := &ValidationError{}
		vErr.add("session_id", "session id is required")
		return vErr
	}
	return nil
}
