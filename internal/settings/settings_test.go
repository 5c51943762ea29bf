package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

const sample = `
rooms:
  - {id: "12", name: "Pokoj 12", beds: 2, size: small}
  - {id: "14", name: "Pokoj 14", beds: 4, size: large}
prices:
  internal:
    small: {empty: 300, adult: 50, child: 25}
    large: {empty: 400, adult: 60, child: 30}
  external:
    small: {empty: 500, adult: 100, child: 50}
bulk_prices: {base_price: 2000, internal_adult: 100, internal_child: 50, external_adult: 250, external_child: 100}
blocked_dates:
  - {room_id: "*", date: 2025-12-24, reason: "Christmas"}
  - {room_id: "14", date: "2025-07-01", reason: "painting"}
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Equal(t, []string{"12", "14"}, s.RoomIDs())
	room, ok := s.Room("14")
	require.True(t, ok)
	require.Equal(t, 4, room.Beds)
	require.Equal(t, pricing.SizeLarge, room.Size)

	_, ok = s.Room("99")
	require.False(t, ok)

	require.Len(t, s.Version, 64)
	again, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, s.Version, again.Version)

	require.True(t, s.CoversAllRooms([]string{"14", "12"}))
	require.False(t, s.CoversAllRooms([]string{"12"}))

	blocks := s.SeedBlocks()
	require.Len(t, blocks, 2)
	require.Equal(t, availability.AllRooms, blocks[0].RoomID)
	require.Equal(t, "2025-12-24", blocks[0].Date.Format("2006-01-02"))
}

func TestParseLeavesMissingRatesToCalculator(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(sample))
	require.NoError(t, err)

	calc := s.Calculator()
	_, err = calc.RoomPrice(pricing.RoomGuests{RoomID: "14", Size: pricing.SizeLarge, Guests: pricing.GuestBreakdown{ExternalAdults: 1}}, 1)
	require.ErrorIs(t, err, pricing.ErrMissingRate)

	price, err := calc.RoomPrice(pricing.RoomGuests{RoomID: "12", Size: pricing.SizeSmall, Guests: pricing.GuestBreakdown{InternalAdults: 1, ExternalAdults: 1}}, 2)
	require.NoError(t, err)
	require.Equal(t, int64(900), price.Total)
}

func TestParseRejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{name: "no rooms", yaml: "rooms: []\n", message: "at least one room"},
		{name: "duplicate room", yaml: "rooms: [{id: a, beds: 1, size: small}, {id: a, beds: 1, size: small}]\n", message: "duplicate"},
		{name: "wildcard id", yaml: "rooms: [{id: '*', beds: 1, size: small}]\n", message: "reserved"},
		{name: "zero beds", yaml: "rooms: [{id: a, beds: 0, size: small}]\n", message: "beds"},
		{name: "unknown size", yaml: "rooms: [{id: a, beds: 1, size: medium}]\n", message: "size"},
		{name: "negative price", yaml: "rooms: [{id: a, beds: 1, size: small}]\nprices: {internal: {small: {empty: -1}}}\n", message: "negative"},
		{name: "unknown tier", yaml: "rooms: [{id: a, beds: 1, size: small}]\nprices: {vip: {small: {empty: 1}}}\n", message: "unknown tier"},
		{name: "block for unknown room", yaml: "rooms: [{id: a, beds: 1, size: small}]\nblocked_dates: [{room_id: b, date: 2025-01-01}]\n", message: "unknown room"},
		{name: "bad block date", yaml: "rooms: [{id: a, beds: 1, size: small}]\nblocked_dates: [{room_id: a, date: tomorrow}]\n", message: "invalid date"},
		{name: "unknown field", yaml: "rooms: [{id: a, beds: 1, size: small, floor: 2}]\n", message: "floor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalid)
			require.ErrorContains(t, err, tt.message)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Rooms, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
