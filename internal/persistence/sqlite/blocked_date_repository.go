package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

// CreateBlockedDate inserts a closure. The (room, date) pair is unique.
func (s *Store) CreateBlockedDate(ctx context.Context, blocked persistence.BlockedDate) error {
	_, err := s.q(ctx).ExecContext(ctx, `
INSERT INTO blocked_dates (id, room_id, date, reason, created_at)
VALUES (?, ?, ?, ?, ?)`,
		blocked.ID,
		blocked.RoomID,
		daterange.Format(blocked.Date),
		blocked.Reason,
		blocked.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("create blocked date: %w", mapError(err))
	}
	return nil
}

// ListBlockedDates returns matching closures ordered by date. A room filter also returns wildcard rows.
func (s *Store) ListBlockedDates(ctx context.Context, filter persistence.BlockedDateFilter) ([]persistence.BlockedDate, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.RoomIDs) > 0 {
		where = append(where, `(room_id = '*' OR room_id IN (`+placeholders(len(filter.RoomIDs))+`))`)
		args = append(args, stringArgs(filter.RoomIDs)...)
	}
	if filter.Window.From != nil {
		where = append(where, `date >= ?`)
		args = append(args, daterange.Format(*filter.Window.From))
	}
	if filter.Window.To != nil {
		where = append(where, `date < ?`)
		args = append(args, daterange.Format(*filter.Window.To))
	}

	query := `SELECT id, room_id, date, reason, created_at FROM blocked_dates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, room_id`

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.BlockedDate, 0)
	for rows.Next() {
		var (
			b         persistence.BlockedDate
			date      string
			createdAt int64
		)
		if err := rows.Scan(&b.ID, &b.RoomID, &date, &b.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("list blocked dates: %w", err)
		}
		if b.Date, err = daterange.Parse(date); err != nil {
			return nil, fmt.Errorf("list blocked dates: %w", err)
		}
		b.CreatedAt = fromNanos(createdAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBlockedDate removes a closure.
func (s *Store) DeleteBlockedDate(ctx context.Context, id string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM blocked_dates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blocked date: %w", mapError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blocked date: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
