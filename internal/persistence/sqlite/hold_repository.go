package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

const holdColumns = `id, session_id, start_date, end_date, rooms, guests, price, created_at, expires_at`

// CreateHold inserts a hold and indexes its rooms.
func (s *Store) CreateHold(ctx context.Context, hold persistence.Hold) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		rooms, err := json.Marshal(hold.RoomIDs)
		if err != nil {
			return fmt.Errorf("create hold: encode rooms: %w", err)
		}
		guests, err := json.Marshal(hold.Guests)
		if err != nil {
			return fmt.Errorf("create hold: encode guests: %w", err)
		}

		_, err = s.q(txCtx).ExecContext(txCtx, `
INSERT INTO holds (`+holdColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			hold.ID,
			hold.SessionID,
			daterange.Format(hold.Start),
			daterange.Format(hold.End),
			string(rooms),
			string(guests),
			hold.Price,
			hold.CreatedAt.UTC().UnixNano(),
			hold.ExpiresAt.UTC().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("create hold: %w", mapError(err))
		}
		for _, roomID := range hold.RoomIDs {
			if _, err := s.q(txCtx).ExecContext(txCtx, `INSERT INTO hold_rooms (hold_id, room_id) VALUES (?, ?)`, hold.ID, roomID); err != nil {
				return fmt.Errorf("create hold: room %s: %w", roomID, mapError(err))
			}
		}
		return nil
	})
}

// GetHold retrieves a hold by id, expired or not.
func (s *Store) GetHold(ctx context.Context, id string) (persistence.Hold, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = ?`, id)
	hold, err := scanHold(row)
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
		where = append(where, `session_id = ?`)
		args = append(args, filter.SessionID)
	}
	if len(filter.RoomIDs) > 0 {
		where = append(where, `id IN (SELECT hold_id FROM hold_rooms WHERE room_id IN (`+placeholders(len(filter.RoomIDs))+`))`)
		args = append(args, stringArgs(filter.RoomIDs)...)
	}
	if filter.ActiveAt != nil {
		where = append(where, `expires_at > ?`)
		args = append(args, filter.ActiveAt.UTC().UnixNano())
	}
	if filter.Window.To != nil {
		where = append(where, `start_date < ?`)
		args = append(args, daterange.Format(*filter.Window.To))
	}
	if filter.Window.From != nil {
		where = append(where, `end_date > ?`)
		args = append(args, daterange.Format(*filter.Window.From))
	}

	query := `SELECT ` + holdColumns + ` FROM holds`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holds: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.Hold, 0)
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("list holds: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHold removes a hold; its room index cascades.
func (s *Store) DeleteHold(ctx context.Context, id string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM holds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete hold: %w", mapError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete hold: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteExpiredHolds removes holds whose expiry is at or before reference.
func (s *Store) DeleteExpiredHolds(ctx context.Context, reference time.Time) (int, error) {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM holds WHERE expires_at <= ?`, reference.UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", mapError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: rows affected: %w", err)
	}
	return int(affected), nil
}

func scanHold(row scanner) (persistence.Hold, error) {
	var (
		h                    persistence.Hold
		start, end           string
		rooms, guests        string
		createdAt, expiresAt int64
	)
	if err := row.Scan(&h.ID, &h.SessionID, &start, &end, &rooms, &guests, &h.Price, &createdAt, &expiresAt); err != nil {
		return persistence.Hold{}, err
	}
	var err error
	if h.Start, err = daterange.Parse(start); err != nil {
		return persistence.Hold{}, err
	}
	if h.End, err = daterange.Parse(end); err != nil {
		return persistence.Hold{}, err
	}
	if err := json.Unmarshal([]byte(rooms), &h.RoomIDs); err != nil {
		return persistence.Hold{}, fmt.Errorf("decode rooms: %w", err)
	}
	if err := json.Unmarshal([]byte(guests), &h.Guests); err != nil {
		return persistence.Hold{}, fmt.Errorf("decode guests: %w", err)
	}
	h.CreatedAt = fromNanos(createdAt)
	h.ExpiresAt = fromNanos(expiresAt)
	return h, nil
}
