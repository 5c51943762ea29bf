package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

type bookingRoomRow struct {
	RoomID string                 `json:"room_id"`
	Guests pricing.GuestBreakdown `json:"guests"`
}

const bookingColumns = `id, edit_token_hash, model, start_date, end_date, rooms, guests,
contact_name, contact_email, contact_phone, contact_note, total_price, settings_version, created_at, updated_at`

// CreateBooking inserts a booking and claims its rooms.
func (s *Store) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		rooms, guests, err := encodeBooking(booking)
		if err != nil {
			return err
		}
		_, err = s.q(txCtx).ExecContext(txCtx, `
INSERT INTO bookings (`+bookingColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID,
			booking.EditTokenHash,
			string(booking.Model),
			daterange.Format(booking.Start),
			daterange.Format(booking.End),
			rooms,
			guests,
			booking.Contact.Name,
			booking.Contact.Email,
			booking.Contact.Phone,
			booking.Contact.Note,
			booking.TotalPrice,
			booking.SettingsVersion,
			booking.CreatedAt.UTC().UnixNano(),
			booking.UpdatedAt.UTC().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("create booking: %w", mapError(err))
		}
		return s.claimRooms(txCtx, booking)
	})
}

// UpdateBooking rewrites a booking and re-claims its rooms for the new dates.
func (s *Store) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		rooms, guests, err := encodeBooking(booking)
		if err != nil {
			return err
		}
		res, err := s.q(txCtx).ExecContext(txCtx, `
UPDATE bookings
SET edit_token_hash = ?, model = ?, start_date = ?, end_date = ?, rooms = ?, guests = ?,
    contact_name = ?, contact_email = ?, contact_phone = ?, contact_note = ?,
    total_price = ?, settings_version = ?, updated_at = ?
WHERE id = ?`,
			booking.EditTokenHash,
			string(booking.Model),
			daterange.Format(booking.Start),
			daterange.Format(booking.End),
			rooms,
			guests,
			booking.Contact.Name,
			booking.Contact.Email,
			booking.Contact.Phone,
			booking.Contact.Note,
			booking.TotalPrice,
			booking.SettingsVersion,
			booking.UpdatedAt.UTC().UnixNano(),
			booking.ID,
		)
		if err != nil {
			return fmt.Errorf("update booking: %w", mapError(err))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update booking: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := s.q(txCtx).ExecContext(txCtx, `DELETE FROM booking_rooms WHERE booking_id = ?`, booking.ID); err != nil {
			return fmt.Errorf("update booking: release rooms: %w", mapError(err))
		}
		return s.claimRooms(txCtx, booking)
	})
}

func (s *Store) claimRooms(ctx context.Context, booking persistence.Booking) error {
	start, end := daterange.Format(booking.Start), daterange.Format(booking.End)
	for _, room := range booking.Rooms {
		_, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO booking_rooms (booking_id, room_id, start_date, end_date) VALUES (?, ?, ?, ?)`,
			booking.ID, room.RoomID, start, end,
		)
		if err != nil {
			return fmt.Errorf("claim room %s: %w", room.RoomID, mapError(err))
		}
	}
	return nil
}

// GetBooking retrieves a booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return persistence.Booking{}, mapError(err)
	}
	return booking, nil
}

// ListBookings returns matching bookings ordered by start date.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.RoomIDs) > 0 {
		where = append(where, `id IN (SELECT booking_id FROM booking_rooms WHERE room_id IN (`+placeholders(len(filter.RoomIDs))+`))`)
		args = append(args, stringArgs(filter.RoomIDs)...)
	}
	if filter.Window.To != nil {
		where = append(where, `start_date < ?`)
		args = append(args, daterange.Format(*filter.Window.To))
	}
	if filter.Window.From != nil {
		where = append(where, `end_date > ?`)
		args = append(args, daterange.Format(*filter.Window.From))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBooking removes a booking; its room claims cascade.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", mapError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (persistence.Booking, error) {
	var (
		b                    persistence.Booking
		model, start, end    string
		rooms, guests        string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&b.ID,
		&b.EditTokenHash,
		&model,
		&start,
		&end,
		&rooms,
		&guests,
		&b.Contact.Name,
		&b.Contact.Email,
		&b.Contact.Phone,
		&b.Contact.Note,
		&b.TotalPrice,
		&b.SettingsVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}
	b.Model = pricing.Model(model)
	if b.Start, err = daterange.Parse(start); err != nil {
		return persistence.Booking{}, err
	}
	if b.End, err = daterange.Parse(end); err != nil {
		return persistence.Booking{}, err
	}

	var roomRows []bookingRoomRow
	if err := json.Unmarshal([]byte(rooms), &roomRows); err != nil {
		return persistence.Booking{}, fmt.Errorf("decode rooms: %w", err)
	}
	b.Rooms = make([]persistence.BookingRoom, 0, len(roomRows))
	for _, r := range roomRows {
		b.Rooms = append(b.Rooms, persistence.BookingRoom{RoomID: r.RoomID, Guests: r.Guests})
	}
	if err := json.Unmarshal([]byte(guests), &b.Guests); err != nil {
		return persistence.Booking{}, fmt.Errorf("decode guests: %w", err)
	}
	b.CreatedAt = fromNanos(createdAt)
	b.UpdatedAt = fromNanos(updatedAt)
	return b, nil
}

func encodeBooking(b persistence.Booking) (rooms, guests string, err error) {
	rows := make([]bookingRoomRow, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		rows = append(rows, bookingRoomRow{RoomID: r.RoomID, Guests: r.Guests})
	}
	roomsJSON, err := json.Marshal(rows)
	if err != nil {
		return "", "", fmt.Errorf("encode rooms: %w", err)
	}
	guestsJSON, err := json.Marshal(b.Guests)
	if err != nil {
		return "", "", fmt.Errorf("encode guests: %w", err)
	}
	return string(roomsJSON), string(guestsJSON), nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
