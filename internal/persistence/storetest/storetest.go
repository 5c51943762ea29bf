// Package storetest holds the behaviour every persistence.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) persistence.Store

var reference = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func day(value string) time.Time {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return d
}

func booking(id string, start, end string, rooms ...string) persistence.Booking {
	b := persistence.Booking{
		ID:              id,
		EditTokenHash:   "hash-" + id,
		Model:           pricing.ModelPerRoom,
		Start:           day(start),
		End:             day(end),
		Contact:         persistence.Contact{Name: "Jana Nováková", Email: "jana@example.com"},
		TotalPrice:      900,
		SettingsVersion: "v1",
		CreatedAt:       reference,
		UpdatedAt:       reference,
	}
	for _, r := range rooms {
		g := pricing.GuestBreakdown{InternalAdults: 1, ExternalAdults: 1}
		b.Rooms = append(b.Rooms, persistence.BookingRoom{RoomID: r, Guests: g})
		b.Guests = b.Guests.Add(g)
	}
	return b
}

func hold(id, session string, start, end string, expires time.Time, rooms ...string) persistence.Hold {
	return persistence.Hold{
		ID:        id,
		SessionID: session,
		RoomIDs:   rooms,
		Start:     day(start),
		End:       day(end),
		Guests:    pricing.GuestBreakdown{ExternalAdults: 2},
		Price:     1200,
		CreatedAt: reference,
		ExpiresAt: expires,
	}
}

// Run exercises the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("bookings", func(t *testing.T) { testBookings(t, newStore(t)) })
	t.Run("booking overlap", func(t *testing.T) { testBookingOverlap(t, newStore(t)) })
	t.Run("blocked dates", func(t *testing.T) { testBlockedDates(t, newStore(t)) })
	t.Run("holds", func(t *testing.T) { testHolds(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})
}

func testBookings(t *testing.T, store persistence.Store) {
	ctx := context.Background()

	b := booking("b1", "2025-06-01", "2025-06-03", "12", "14")
	if err := store.CreateBooking(ctx, b); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if err := store.CreateBooking(ctx, b); !errors.Is(err, persistence.ErrDuplicate) && !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	fetched, err := store.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !fetched.Start.Equal(b.Start) || !fetched.End.Equal(b.End) || len(fetched.Rooms) != 2 {
		t.Fatalf("unexpected booking: %#v", fetched)
	}
	if fetched.Rooms[0].Guests != b.Rooms[0].Guests || fetched.Guests != b.Guests {
		t.Fatalf("guest breakdown not preserved: %#v", fetched)
	}
	if fetched.Contact != b.Contact || fetched.TotalPrice != 900 || fetched.EditTokenHash != "hash-b1" || fetched.SettingsVersion != "v1" {
		t.Fatalf("booking fields not preserved: %#v", fetched)
	}

	if _, err := store.GetBooking(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	listed, err := store.ListBookings(ctx, persistence.BookingFilter{RoomIDs: []string{"14"}, Window: persistence.NewWindow(day("2025-06-02"), day("2025-06-10"))})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(listed))
	}

	listed, err = store.ListBookings(ctx, persistence.BookingFilter{Window: persistence.NewWindow(day("2025-06-03"), day("2025-06-10"))})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("checkout day must not match, got %d", len(listed))
	}

	b.End = day("2025-06-05")
	b.TotalPrice = 1800
	b.Rooms = b.Rooms[:1]
	b.UpdatedAt = reference.Add(time.Hour)
	if err := store.UpdateBooking(ctx, b); err != nil {
		t.Fatalf("UpdateBooking failed: %v", err)
	}
	fetched, err = store.GetBooking(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !fetched.End.Equal(day("2025-06-05")) || fetched.TotalPrice != 1800 || len(fetched.Rooms) != 1 {
		t.Fatalf("update not applied: %#v", fetched)
	}

	if err := store.UpdateBooking(ctx, booking("nope", "2025-06-01", "2025-06-02", "1")); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.DeleteBooking(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBooking failed: %v", err)
	}
	if err := store.DeleteBooking(ctx, "b1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testBookingOverlap(t *testing.T, store persistence.Store) {
	ctx := context.Background()

	if err := store.CreateBooking(ctx, booking("b1", "2025-06-01", "2025-06-03", "7")); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if err := store.CreateBooking(ctx, booking("b2", "2025-06-03", "2025-06-05", "7")); err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}
	if err := store.CreateBooking(ctx, booking("b3", "2025-06-02", "2025-06-04", "8", "7")); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := store.CreateBooking(ctx, booking("b4", "2025-06-02", "2025-06-04", "8")); err != nil {
		t.Fatalf("other room rejected: %v", err)
	}

	moved := booking("b1", "2025-06-01", "2025-06-04", "7")
	if err := store.UpdateBooking(ctx, moved); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict on update, got %v", err)
	}
}

func testBlockedDates(t *testing.T, store persistence.Store) {
	ctx := context.Background()

	entries := []persistence.BlockedDate{
		{ID: "x1", RoomID: "*", Date: day("2025-12-24"), Reason: "Christmas", CreatedAt: reference},
		{ID: "x2", RoomID: "12", Date: day("2025-07-01"), Reason: "painting", CreatedAt: reference},
		{ID: "x3", RoomID: "14", Date: day("2025-07-01"), Reason: "painting", CreatedAt: reference},
	}
	for _, e := range entries {
		if err := store.CreateBlockedDate(ctx, e); err != nil {
			t.Fatalf("CreateBlockedDate failed: %v", err)
		}
	}
	dup := entries[1]
	dup.ID = "x4"
	if err := store.CreateBlockedDate(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	listed, err := store.ListBlockedDates(ctx, persistence.BlockedDateFilter{RoomIDs: []string{"12"}})
	if err != nil {
		t.Fatalf("ListBlockedDates failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "x2" || listed[1].ID != "x1" {
		t.Fatalf("expected own and wildcard entries ordered by date, got %#v", listed)
	}

	listed, err = store.ListBlockedDates(ctx, persistence.BlockedDateFilter{Window: persistence.NewWindow(day("2025-07-01"), day("2025-07-02"))})
	if err != nil {
		t.Fatalf("ListBlockedDates failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 entries in window, got %d", len(listed))
	}

	if err := store.DeleteBlockedDate(ctx, "x2"); err != nil {
		t.Fatalf("DeleteBlockedDate failed: %v", err)
	}
	if err := store.DeleteBlockedDate(ctx, "x2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testHolds(t *testing.T, store persistence.Store) {
	ctx := context.Background()

	holds := []persistence.Hold{
		hold("h1", "A", "2025-06-01", "2025-06-03", reference.Add(15*time.Minute), "7"),
		hold("h2", "A", "2025-06-10", "2025-06-12", reference.Add(-time.Minute), "8"),
		hold("h3", "B", "2025-06-02", "2025-06-04", reference.Add(15*time.Minute), "9", "10"),
		hold("h4", "B", "2025-06-02", "2025-06-04", reference, "11"),
	}
	for _, h := range holds {
		if err := store.CreateHold(ctx, h); err != nil {
			t.Fatalf("CreateHold failed: %v", err)
		}
	}
	if err := store.CreateHold(ctx, holds[0]); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	fetched, err := store.GetHold(ctx, "h3")
	if err != nil {
		t.Fatalf("GetHold failed: %v", err)
	}
	if fetched.SessionID != "B" || len(fetched.RoomIDs) != 2 || fetched.Price != 1200 || fetched.Guests.ExternalAdults != 2 {
		t.Fatalf("unexpected hold: %#v", fetched)
	}
	if !fetched.ExpiresAt.Equal(holds[2].ExpiresAt) {
		t.Fatalf("expiry not preserved: %v", fetched.ExpiresAt)
	}

	now := reference
	active, err := store.ListHolds(ctx, persistence.HoldFilter{SessionID: "A", ActiveAt: &now})
	if err != nil {
		t.Fatalf("ListHolds failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "h1" {
		t.Fatalf("expected only h1 active for A, got %#v", active)
	}

	byRoom, err := store.ListHolds(ctx, persistence.HoldFilter{RoomIDs: []string{"10"}, Window: persistence.NewWindow(day("2025-06-03"), day("2025-06-04"))})
	if err != nil {
		t.Fatalf("ListHolds failed: %v", err)
	}
	if len(byRoom) != 1 || byRoom[0].ID != "h3" {
		t.Fatalf("expected h3 by room, got %#v", byRoom)
	}

	removed, err := store.DeleteExpiredHolds(ctx, reference)
	if err != nil {
		t.Fatalf("DeleteExpiredHolds failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 expired holds removed, got %d", removed)
	}
	if _, err := store.GetHold(ctx, "h4"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("hold expiring exactly at reference must be reaped, got %v", err)
	}

	if err := store.DeleteHold(ctx, "h1"); err != nil {
		t.Fatalf("DeleteHold failed: %v", err)
	}
	if err := store.DeleteHold(ctx, "h1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testTransactions(t *testing.T, store persistence.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(txCtx context.Context) error {
		if err := store.LockRooms(txCtx, []string{"7", "3"}); err != nil {
			return err
		}
		if err := store.CreateHold(txCtx, hold("h1", "A", "2025-06-01", "2025-06-03", reference.Add(time.Hour), "7")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected tx error, got %v", err)
	}
	if _, err := store.GetHold(ctx, "h1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("rolled back hold must not exist, got %v", err)
	}

	err = store.WithTx(ctx, func(txCtx context.Context) error {
		if err := store.LockRooms(txCtx, []string{"7"}); err != nil {
			return err
		}
		existing, err := store.ListHolds(txCtx, persistence.HoldFilter{RoomIDs: []string{"7"}})
		if err != nil {
			return err
		}
		if len(existing) != 0 {
			return errors.New("unexpected hold")
		}
		return store.CreateHold(txCtx, hold("h2", "A", "2025-06-01", "2025-06-03", reference.Add(time.Hour), "7"))
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if _, err := store.GetHold(ctx, "h2"); err != nil {
		t.Fatalf("committed hold missing: %v", err)
	}
}
