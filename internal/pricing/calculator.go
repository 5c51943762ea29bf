// Package pricing computes booking prices from per-tier nightly rates.
//
// Two tariff models exist. The per-room model prices each room from its size
// class: an occupancy-independent empty-room rate plus per-guest surcharges.
// The bulk model prices the whole property from one flat nightly base price
// plus per-guest surcharges. Both are pure: the same input always yields the
// same integer total and nothing is rounded.
package pricing

import "fmt"

// Size is a room size class.
type Size string

const (
	SizeSmall Size = "small"
	SizeLarge Size = "large"
)

// Valid reports whether s is a known size class.
func (s Size) Valid() bool {
	return s == SizeSmall || s == SizeLarge
}

// Rates are the nightly amounts for one tier and size class.
type Rates struct {
	Empty int64 `json:"empty" yaml:"empty"`
	Adult int64 `json:"adult" yaml:"adult"`
	Child int64 `json:"child" yaml:"child"`
}

// RateTable holds per-room rates by tier and size class.
type RateTable map[Tier]map[Size]Rates

// Lookup returns the rates for a tier and size or a *MissingRateError.
func (t RateTable) Lookup(tier Tier, size Size) (Rates, error) {
	bySize, ok := t[tier]
	if !ok {
		return Rates{}, &MissingRateError{Tier: tier, Size: size}
	}
	rates, ok := bySize[size]
	if !ok {
		return Rates{}, &MissingRateError{Tier: tier, Size: size}
	}
	return rates, nil
}

// BulkTariff is the whole-property nightly tariff.
type BulkTariff struct {
	BasePrice     int64 `json:"base_price" yaml:"base_price"`
	InternalAdult int64 `json:"internal_adult" yaml:"internal_adult"`
	InternalChild int64 `json:"internal_child" yaml:"internal_child"`
	ExternalAdult int64 `json:"external_adult" yaml:"external_adult"`
	ExternalChild int64 `json:"external_child" yaml:"external_child"`
}

// Model names the tariff model a quote was computed with.
type Model string

const (
	ModelPerRoom Model = "per_room"
	ModelBulk    Model = "bulk"
)

// RoomGuests is one room of a per-room request.
type RoomGuests struct {
	RoomID string
	Size   Size
	Guests GuestBreakdown
}

// Request selects the pricing formula. It is implemented by PerRoomRequest and BulkRequest only.
type Request interface {
	model() Model
}

// PerRoomRequest prices every listed room separately and sums the results.
type PerRoomRequest struct {
	Nights int
	Rooms  []RoomGuests
}

func (PerRoomRequest) model() Model { return ModelPerRoom }

// BulkRequest prices the whole property as one unit.
type BulkRequest struct {
	Nights int
	Guests GuestBreakdown
}

func (BulkRequest) model() Model { return ModelBulk }

// RoomPrice itemizes one room of a per-room quote.
type RoomPrice struct {
	RoomID    string `json:"room_id"`
	EmptyTier Tier   `json:"empty_tier"`
	Empty     int64  `json:"empty"`
	Guests    int64  `json:"guests"`
	Total     int64  `json:"total"`
}

// Quote is the outcome of a price calculation.
type Quote struct {
	Model  Model       `json:"model"`
	Nights int         `json:"nights"`
	Total  int64       `json:"total"`
	Rooms  []RoomPrice `json:"rooms,omitempty"`
}

// Calculator prices requests against a fixed set of rates.
type Calculator struct {
	rates RateTable
	bulk  *BulkTariff
}

// NewCalculator constructs a calculator. A nil bulk tariff makes bulk requests fail with MissingRateError.
func NewCalculator(rates RateTable, bulk *BulkTariff) *Calculator {
	return &Calculator{rates: rates, bulk: bulk}
}

// Calculate dispatches to the formula matching the request variant.
func (c *Calculator) Calculate(req Request) (Quote, error) {
	switch r := req.(type) {
	case PerRoomRequest:
		return c.CalculatePerRoom(r)
	case *PerRoomRequest:
		return c.CalculatePerRoom(*r)
	case BulkRequest:
		return c.CalculateBulk(r)
	case *BulkRequest:
		return c.CalculateBulk(*r)
	default:
		return Quote{}, fmt.Errorf("%w: unsupported request %T", ErrInvalidInput, req)
	}
}

// CalculatePerRoom sums the per-room formula over every room.
func (c *Calculator) CalculatePerRoom(req PerRoomRequest) (Quote, error) {
	if req.Nights < 0 {
		return Quote{}, fmt.Errorf("%w: negative nights", ErrInvalidInput)
	}
	quote := Quote{Model: ModelPerRoom, Nights: req.Nights, Rooms: make([]RoomPrice, 0, len(req.Rooms))}
	for _, room := range req.Rooms {
		price, err := c.RoomPrice(room, req.Nights)
		if err != nil {
			return Quote{}, err
		}
		quote.Rooms = append(quote.Rooms, price)
		quote.Total += price.Total
	}
	return quote, nil
}

// RoomPrice applies the per-room formula to a single room. The empty-room
// component uses the internal tier whenever any priced occupant is internal.
func (c *Calculator) RoomPrice(room RoomGuests, nights int) (RoomPrice, error) {
	if !room.Size.Valid() {
		return RoomPrice{}, fmt.Errorf("%w: room %s has size %q", ErrInvalidInput, room.RoomID, room.Size)
	}
	if err := room.Guests.validate(); err != nil {
		return RoomPrice{}, err
	}

	g := room.Guests
	emptyTier := TierExternal
	if g.HasInternal() {
		emptyTier = TierInternal
	}
	emptyRates, err := c.rates.Lookup(emptyTier, room.Size)
	if err != nil {
		return RoomPrice{}, err
	}

	n := int64(nights)
	var surcharge int64
	if g.InternalAdults > 0 || g.InternalChildren > 0 {
		internal, err := c.rates.Lookup(TierInternal, room.Size)
		if err != nil {
			return RoomPrice{}, err
		}
		surcharge += int64(g.InternalAdults)*internal.Adult*n + int64(g.InternalChildren)*internal.Child*n
	}
	if g.ExternalAdults > 0 || g.ExternalChildren > 0 {
		external, err := c.rates.Lookup(TierExternal, room.Size)
		if err != nil {
			return RoomPrice{}, err
		}
		surcharge += int64(g.ExternalAdults)*external.Adult*n + int64(g.ExternalChildren)*external.Child*n
	}

	empty := emptyRates.Empty * n
	return RoomPrice{
		RoomID:    room.RoomID,
		EmptyTier: emptyTier,
		Empty:     empty,
		Guests:    surcharge,
		Total:     empty + surcharge,
	}, nil
}

// CalculateBulk applies the whole-property formula. The base price is charged
// once per night regardless of how many rooms the property has.
func (c *Calculator) CalculateBulk(req BulkRequest) (Quote, error) {
	if req.Nights < 0 {
		return Quote{}, fmt.Errorf("%w: negative nights", ErrInvalidInput)
	}
	if c.bulk == nil {
		return Quote{}, &MissingRateError{Bulk: true}
	}
	if err := req.Guests.validate(); err != nil {
		return Quote{}, err
	}

	t := c.bulk
	g := req.Guests
	n := int64(req.Nights)
	total := t.BasePrice*n +
		int64(g.InternalAdults)*t.InternalAdult*n +
		int64(g.ExternalAdults)*t.ExternalAdult*n +
		int64(g.InternalChildren)*t.InternalChild*n +
		int64(g.ExternalChildren)*t.ExternalChild*n

	return Quote{Model: ModelBulk, Nights: req.Nights, Total: total}, nil
}
