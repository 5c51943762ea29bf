package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
)

// loadSnapshot reads every booking, block and active hold touching roomIDs within [from, to).
func loadSnapshot(ctx context.Context, repo SnapshotReader, property Property, roomIDs []string, from, to, now time.Time) (availability.Snapshot, error) {
	window := persistence.NewWindow(from, to)

	bookings, err := repo.ListBookings(ctx, persistence.BookingFilter{RoomIDs: roomIDs, Window: window})
	if err != nil {
		return availability.Snapshot{}, fmt.Errorf("load bookings: %w", err)
	}
	blocked, err := repo.ListBlockedDates(ctx, persistence.BlockedDateFilter{RoomIDs: roomIDs, Window: window})
	if err != nil {
		return availability.Snapshot{}, fmt.Errorf("load blocked dates: %w", err)
	}
	holds, err := repo.ListHolds(ctx, persistence.HoldFilter{RoomIDs: roomIDs, Window: window, ActiveAt: &now})
	if err != nil {
		return availability.Snapshot{}, fmt.Errorf("load holds: %w", err)
	}

	snap := availability.Snapshot{
		Bookings: make([]availability.Booking, 0, len(bookings)),
		Blocks:   make([]availability.Block, 0, len(blocked)),
		Holds:    make([]availability.Hold, 0, len(holds)),
		Now:      now,
	}
	for _, b := range bookings {
		snap.Bookings = append(snap.Bookings, availability.Booking{
			ID:         b.ID,
			ContactKey: contactKey(b.Contact.Email),
			RoomIDs:    b.RoomIDs(),
			Start:      b.Start,
			End:        b.End,
		})
	}
	for _, b := range blocked {
		snap.Blocks = append(snap.Blocks, availability.Block{RoomID: b.RoomID, Date: b.Date, Reason: b.Reason})
	}
	for _, seed := range property.SeedBlocks() {
		if seed.RoomID != availability.AllRooms && !slices.Contains(roomIDs, seed.RoomID) {
			continue
		}
		if !daterange.Contains(*window.From, *window.To, seed.Date) {
			continue
		}
		snap.Blocks = append(snap.Blocks, seed)
	}
	for _, h := range holds {
		snap.Holds = append(snap.Holds, availability.Hold{
			ID:        h.ID,
			SessionID: h.SessionID,
			RoomIDs:   h.RoomIDs,
			Start:     h.Start,
			End:       h.End,
			ExpiresAt: h.ExpiresAt,
		})
	}
	return snap, nil
}

// contactKey is a stable pseudonym for a booking holder.
func contactKey(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}
