package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

const holdColumns = `id, session_id, room_ids, start_date, end_date, guests, price, created_at, expires_at`

// CreateHold inserts a hold.
func (s *Store) CreateHold(ctx context.Context, hold persistence.Hold) error {
	_, err := s.exec(ctx, `
INSERT INTO holds (`+holdColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		hold.ID,
		hold.SessionID,
		hold.RoomIDs,
		daterange.Day(hold.Start),
		daterange.Day(hold.End),
		hold.Guests,
		hold.Price,
		hold.CreatedAt,
		hold.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create hold: %w", mapError(err))
	}
	return nil
}

// GetHold retrieves a hold by id, expired or not.
func (s *Store) GetHold(ctx context.Context, id string) (persistence.Hold, error) {
	rows, err := s.query(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, id)
	if err != nil {
		return persistence.Hold{}, fmt.Errorf("get hold: %w", mapError(err))
	}
	hold, err := pgx.CollectExactlyOneRow(rows, scanHold)
	if err != nil {
		return persistence.Hold{}, mapError(err)
	}
	return hold, nil
}

// ListHolds returns matching holds ordered by creation time.
func (s *Store) ListHolds(ctx context.Context, filter persistence.HoldFilter) ([]persistence.Hold, error) {
	var (
		where []string
		args  []any
	)
	if filter.SessionID != "" {
		args = append(args, filter.SessionID)
		where = append(where, fmt.Sprintf(`session_id = $%d`, len(args)))
	}
	if len(filter.RoomIDs) > 0 {
		args = append(args, filter.RoomIDs)
		where = append(where, fmt.Sprintf(`room_ids && $%d`, len(args)))
	}
	if filter.ActiveAt != nil {
		args = append(args, *filter.ActiveAt)
		where = append(where, fmt.Sprintf(`expires_at > $%d`, len(args)))
	}
	if filter.Window.To != nil {
		args = append(args, daterange.Day(*filter.Window.To))
		where = append(where, fmt.Sprintf(`start_date < $%d`, len(args)))
	}
	if filter.Window.From != nil {
		args = append(args, daterange.Day(*filter.Window.From))
		where = append(where, fmt.Sprintf(`end_date > $%d`, len(args)))
	}

	query := `SELECT ` + holdColumns + ` FROM holds`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", mapError(err))
	}
	holds, err := pgx.CollectRows(rows, scanHold)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", err)
	}
	return holds, nil
}

// DeleteHold removes a hold.
func (s *Store) DeleteHold(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM holds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hold: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteExpiredHolds removes holds whose expiry is at or before reference.
func (s *Store) DeleteExpiredHolds(ctx context.Context, reference time.Time) (int, error) {
	tag, err := s.exec(ctx, `DELETE FROM holds WHERE expires_at <= $1`, reference)
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", mapError(err))
	}
	return int(tag.RowsAffected()), nil
}

func scanHold(row pgx.CollectableRow) (persistence.Hold, error) {
	var h persistence.Hold
	err := row.Scan(&h.ID, &h.SessionID, &h.RoomIDs, &h.Start, &h.End, &h.Guests, &h.Price, &h.CreatedAt, &h.ExpiresAt)
	h.Start, h.End = daterange.Day(h.Start), daterange.Day(h.End)
	h.CreatedAt, h.ExpiresAt = h.CreatedAt.UTC(), h.ExpiresAt.UTC()
	return h, err
}
