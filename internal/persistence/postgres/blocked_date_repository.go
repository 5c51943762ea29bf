package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

// CreateBlockedDate inserts a closure. The (room, date) pair is unique.
func (s *Store) CreateBlockedDate(ctx context.Context, blocked persistence.BlockedDate) error {
	_, err := s.exec(ctx, `
INSERT INTO blocked_dates (id, room_id, date, reason, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		blocked.ID, blocked.RoomID, daterange.Day(blocked.Date), blocked.Reason, blocked.CreatedAt,
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
		args = append(args, filter.RoomIDs)
		where = append(where, fmt.Sprintf(`(room_id = '*' OR room_id = ANY($%d))`, len(args)))
	}
	if filter.Window.From != nil {
		args = append(args, daterange.Day(*filter.Window.From))
		where = append(where, fmt.Sprintf(`date >= $%d`, len(args)))
	}
	if filter.Window.To != nil {
		args = append(args, daterange.Day(*filter.Window.To))
		where = append(where, fmt.Sprintf(`date < $%d`, len(args)))
	}

	query := `SELECT id, room_id, date, reason, created_at FROM blocked_dates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date, room_id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", mapError(err))
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (persistence.BlockedDate, error) {
		var b persistence.BlockedDate
		err := row.Scan(&b.ID, &b.RoomID, &b.Date, &b.Reason, &b.CreatedAt)
		b.Date = daterange.Day(b.Date)
		b.CreatedAt = b.CreatedAt.UTC()
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("list blocked dates: %w", err)
	}
	return out, nil
}

// DeleteBlockedDate removes a closure.
func (s *Store) DeleteBlockedDate(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM blocked_dates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blocked date: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
