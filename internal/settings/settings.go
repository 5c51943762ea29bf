// Package settings loads the property description: rooms, rate tables, the
// bulk tariff and administratively blocked dates.
package settings

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

// ErrInvalid is wrapped by every validation failure reported by Parse.
var ErrInvalid = errors.New("settings: invalid")

// Room is immutable reference data about one bookable room.
type Room struct {
	ID   string       `yaml:"id" json:"id"`
	Name string       `yaml:"name" json:"name"`
	Beds int          `yaml:"beds" json:"beds"`
	Size pricing.Size `yaml:"size" json:"size"`
}

// BlockedDate is a seeded administrative closure.
type BlockedDate struct {
	RoomID string `yaml:"room_id"`
	Date   string `yaml:"date"`
	Reason string `yaml:"reason"`
}

// Settings is the parsed settings file.
type Settings struct {
	Rooms        []Room              `yaml:"rooms"`
	Prices       pricing.RateTable   `yaml:"prices"`
	BulkPrices   *pricing.BulkTariff `yaml:"bulk_prices"`
	BlockedDates []BlockedDate       `yaml:"blocked_dates"`

	// Version fingerprints the file content; bookings record it so their price can be reproduced.
	Version string `yaml:"-"`

	rooms map[string]Room
}

// Load reads and validates a YAML settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates settings from YAML. Missing tier or size rate
// entries are accepted; the calculator reports them when they are needed.
func Parse(data []byte) (*Settings, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	s.Version = hex.EncodeToString(sum[:])
	s.index()
	return &s, nil
}

func (s *Settings) validate() error {
	problems := make([]string, 0)

	if len(s.Rooms) == 0 {
		problems = append(problems, "rooms: at least one room is required")
	}
	seen := make(map[string]struct{}, len(s.Rooms))
	for i, r := range s.Rooms {
		id := strings.TrimSpace(r.ID)
		switch {
		case id == "":
			problems = append(problems, fmt.Sprintf("rooms[%d].id: required", i))
		case id == availability.AllRooms:
			problems = append(problems, fmt.Sprintf("rooms[%d].id: %q is reserved", i, id))
		default:
			if _, dup := seen[id]; dup {
				problems = append(problems, fmt.Sprintf("rooms[%d].id: duplicate %q", i, id))
			}
			seen[id] = struct{}{}
		}
		if r.Beds <= 0 {
			problems = append(problems, fmt.Sprintf("rooms[%d].beds: must be positive", i))
		}
		if !r.Size.Valid() {
			problems = append(problems, fmt.Sprintf("rooms[%d].size: unknown %q", i, r.Size))
		}
	}

	for tier, bySize := range s.Prices {
		if !tier.Valid() {
			problems = append(problems, fmt.Sprintf("prices.%s: unknown tier", tier))
			continue
		}
		for size, rates := range bySize {
			if !size.Valid() {
				problems = append(problems, fmt.Sprintf("prices.%s.%s: unknown size", tier, size))
				continue
			}
			if rates.Empty < 0 || rates.Adult < 0 || rates.Child < 0 {
				problems = append(problems, fmt.Sprintf("prices.%s.%s: negative amount", tier, size))
			}
		}
	}

	if b := s.BulkPrices; b != nil {
		if b.BasePrice < 0 || b.InternalAdult < 0 || b.InternalChild < 0 || b.ExternalAdult < 0 || b.ExternalChild < 0 {
			problems = append(problems, "bulk_prices: negative amount")
		}
	}

	for i, bd := range s.BlockedDates {
		if bd.RoomID != availability.AllRooms {
			if _, ok := seen[bd.RoomID]; !ok {
				problems = append(problems, fmt.Sprintf("blocked_dates[%d].room_id: unknown room %q", i, bd.RoomID))
			}
		}
		if _, err := daterange.Parse(bd.Date); err != nil {
			problems = append(problems, fmt.Sprintf("blocked_dates[%d].date: %v", i, err))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

func (s *Settings) index() {
	s.rooms = make(map[string]Room, len(s.Rooms))
	for i := range s.Rooms {
		s.Rooms[i].ID = strings.TrimSpace(s.Rooms[i].ID)
		s.rooms[s.Rooms[i].ID] = s.Rooms[i]
	}
}

// Room looks up a room by id.
func (s *Settings) Room(id string) (Room, bool) {
	r, ok := s.rooms[id]
	return r, ok
}

// RoomIDs lists room ids in file order.
func (s *Settings) RoomIDs() []string {
	ids := make([]string, 0, len(s.Rooms))
	for _, r := range s.Rooms {
		ids = append(ids, r.ID)
	}
	return ids
}

// CoversAllRooms reports whether ids names every room of the property.
func (s *Settings) CoversAllRooms(ids []string) bool {
	if len(ids) < len(s.Rooms) {
		return false
	}
	for _, r := range s.Rooms {
		if !slices.Contains(ids, r.ID) {
			return false
		}
	}
	return true
}

// Calculator returns a pricing calculator bound to these rates.
func (s *Settings) Calculator() *pricing.Calculator {
	return pricing.NewCalculator(s.Prices, s.BulkPrices)
}

// SeedBlocks converts the seeded blocked dates. Parse has already validated the dates.
func (s *Settings) SeedBlocks() []availability.Block {
	out := make([]availability.Block, 0, len(s.BlockedDates))
	for _, bd := range s.BlockedDates {
		d, err := daterange.Parse(bd.Date)
		if err != nil {
			continue
		}
		out = append(out, availability.Block{RoomID: bd.RoomID, Date: d, Reason: bd.Reason})
	}
	return out
}

// Fingerprint returns Version.
func (s *Settings) Fingerprint() string {
	return s.Version
}
