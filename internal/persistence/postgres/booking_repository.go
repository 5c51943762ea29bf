package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

const bookingColumns = `id, edit_token_hash, model, start_date, end_date, guests,
contact_name, contact_email, contact_phone, contact_note, total_price, settings_version, created_at, updated_at`

// CreateBooking inserts a booking and its room claims in one transaction.
func (s *Store) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		_, err := s.exec(txCtx, `
INSERT INTO bookings (`+bookingColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			booking.ID,
			booking.EditTokenHash,
			string(booking.Model),
			daterange.Day(booking.Start),
			daterange.Day(booking.End),
			booking.Guests,
			booking.Contact.Name,
			booking.Contact.Email,
			booking.Contact.Phone,
			booking.Contact.Note,
			booking.TotalPrice,
			booking.SettingsVersion,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create booking: %w", mapError(err))
		}
		return s.claimRooms(txCtx, booking)
	})
}

// UpdateBooking rewrites a booking and replaces its room claims.
func (s *Store) UpdateBooking(ctx context.Context, booking persistence.Booking) error {
	return s.WithTx(ctx, func(txCtx context.Context) error {
		tag, err := s.exec(txCtx, `
UPDATE bookings
SET edit_token_hash = $2, model = $3, start_date = $4, end_date = $5, guests = $6,
    contact_name = $7, contact_email = $8, contact_phone = $9, contact_note = $10,
    total_price = $11, settings_version = $12, updated_at = $13
WHERE id = $1`,
			booking.ID,
			booking.EditTokenHash,
			string(booking.Model),
			daterange.Day(booking.Start),
			daterange.Day(booking.End),
			booking.Guests,
			booking.Contact.Name,
			booking.Contact.Email,
			booking.Contact.Phone,
			booking.Contact.Note,
			booking.TotalPrice,
			booking.SettingsVersion,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update booking: %w", mapError(err))
		}
		if tag.RowsAffected() == 0 {
			return persistence.ErrNotFound
		}
		if _, err := s.exec(txCtx, `DELETE FROM booking_rooms WHERE booking_id = $1`, booking.ID); err != nil {
			return fmt.Errorf("update booking: release rooms: %w", mapError(err))
		}
		return s.claimRooms(txCtx, booking)
	})
}

func (s *Store) claimRooms(ctx context.Context, booking persistence.Booking) error {
	for i, room := range booking.Rooms {
		_, err := s.exec(ctx, `
INSERT INTO booking_rooms (booking_id, room_id, position, guests, stay)
VALUES ($1, $2, $3, $4, daterange($5::date, $6::date, '[)'))`,
			booking.ID, room.RoomID, i, room.Guests, daterange.Day(booking.Start), daterange.Day(booking.End),
		)
		if err != nil {
			return fmt.Errorf("claim room %s: %w", room.RoomID, mapError(err))
		}
	}
	return nil
}

// GetBooking retrieves a booking by id.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	rows, err := s.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("get booking: %w", mapError(err))
	}
	bookings, err := s.collectBookings(ctx, rows)
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	if len(bookings) == 0 {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return bookings[0], nil
}

// ListBookings returns matching bookings ordered by start date.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.RoomIDs) > 0 {
		args = append(args, filter.RoomIDs)
		where = append(where, fmt.Sprintf(`id IN (SELECT booking_id FROM booking_rooms WHERE room_id = ANY($%d))`, len(args)))
	}
	if filter.Window.To != nil {
		args = append(args, daterange.Day(*filter.Window.To))
		where = append(where, fmt.Sprintf(`start_date < $%d`, len(args)))
	}
	if filter.Window.From != nil {
		args = append(args, daterange.Day(*filter.Window.From))
		where = append(where, fmt.Sprintf(`end_date > $%d`, len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", mapError(err))
	}
	bookings, err := s.collectBookings(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking; its room claims cascade.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (s *Store) collectBookings(ctx context.Context, rows pgx.Rows) ([]persistence.Booking, error) {
	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (persistence.Booking, error) {
		var (
			b     persistence.Booking
			model string
		)
		err := row.Scan(
			&b.ID,
			&b.EditTokenHash,
			&model,
			&b.Start,
			&b.End,
			&b.Guests,
			&b.Contact.Name,
			&b.Contact.Email,
			&b.Contact.Phone,
			&b.Contact.Note,
			&b.TotalPrice,
			&b.SettingsVersion,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		b.Model = pricing.Model(model)
		b.Start, b.End = daterange.Day(b.Start), daterange.Day(b.End)
		b.CreatedAt, b.UpdatedAt = b.CreatedAt.UTC(), b.UpdatedAt.UTC()
		return b, err
	})
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}

	ids := make([]string, len(bookings))
	index := make(map[string]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}

	roomRows, err := s.query(ctx, `
SELECT booking_id, room_id, guests
FROM booking_rooms
WHERE booking_id = ANY($1)
ORDER BY booking_id, position`, ids)
	if err != nil {
		return nil, mapError(err)
	}
	defer roomRows.Close()

	for roomRows.Next() {
		var (
			bookingID string
			room      persistence.BookingRoom
		)
		if err := roomRows.Scan(&bookingID, &room.RoomID, &room.Guests); err != nil {
			return nil, err
		}
		i := index[bookingID]
		bookings[i].Rooms = append(bookings[i].Rooms, room)
	}
	return bookings, roomRows.Err()
}
