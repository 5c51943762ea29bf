package pricing

import "fmt"

// Tier is a guest rate class.
type Tier string

const (
	// TierInternal is the discounted rate class.
	TierInternal Tier = "internal"
	// TierExternal is the standard rate class.
	TierExternal Tier = "external"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierInternal || t == TierExternal
}

// GuestKind distinguishes adults, children and toddlers.
type GuestKind string

const (
	GuestAdult   GuestKind = "adult"
	GuestChild   GuestKind = "child"
	GuestToddler GuestKind = "toddler"
)

// Guest is a single occupant as entered on the booking form.
type Guest struct {
	Kind GuestKind
	Tier Tier
}

// GuestBreakdown is the per-tier occupant count of one room or of a bulk booking.
// It is a value type; callers build a new breakdown instead of mutating a shared one.
type GuestBreakdown struct {
	InternalAdults   int `json:"internal_adults"`
	ExternalAdults   int `json:"external_adults"`
	InternalChildren int `json:"internal_children"`
	ExternalChildren int `json:"external_children"`
	Toddlers         int `json:"toddlers"`
}

// Tally counts guests into a breakdown. Toddlers are counted regardless of tier.
func Tally(guests []Guest) (GuestBreakdown, error) {
	var b GuestBreakdown
	for i, g := range guests {
		if g.Kind != GuestToddler && !g.Tier.Valid() {
			return GuestBreakdown{}, fmt.Errorf("%w: guest %d has tier %q", ErrInvalidInput, i, g.Tier)
		}
		switch g.Kind {
		case GuestAdult:
			if g.Tier == TierInternal {
				b.InternalAdults++
			} else {
				b.ExternalAdults++
			}
		case GuestChild:
			if g.Tier == TierInternal {
				b.InternalChildren++
			} else {
				b.ExternalChildren++
			}
		case GuestToddler:
			b.Toddlers++
		default:
			return GuestBreakdown{}, fmt.Errorf("%w: guest %d has kind %q", ErrInvalidInput, i, g.Kind)
		}
	}
	return b, nil
}

// HasInternal reports whether any priced occupant is in the internal tier.
func (b GuestBreakdown) HasInternal() bool {
	return b.InternalAdults > 0 || b.InternalChildren > 0
}

// Adults returns the number of adults across both tiers.
func (b GuestBreakdown) Adults() int {
	return b.InternalAdults + b.ExternalAdults
}

// Children returns the number of children across both tiers.
func (b GuestBreakdown) Children() int {
	return b.InternalChildren + b.ExternalChildren
}

// Beds is the number of occupants that need a bed. Toddlers do not.
func (b GuestBreakdown) Beds() int {
	return b.Adults() + b.Children()
}

// Add returns the sum of two breakdowns.
func (b GuestBreakdown) Add(other GuestBreakdown) GuestBreakdown {
	return GuestBreakdown{
		InternalAdults:   b.InternalAdults + other.InternalAdults,
		ExternalAdults:   b.ExternalAdults + other.ExternalAdults,
		InternalChildren: b.InternalChildren + other.InternalChildren,
		ExternalChildren: b.ExternalChildren + other.ExternalChildren,
		Toddlers:         b.Toddlers + other.Toddlers,
	}
}

func (b GuestBreakdown) validate() error {
	if b.InternalAdults < 0 || b.ExternalAdults < 0 || b.InternalChildren < 0 || b.ExternalChildren < 0 || b.Toddlers < 0 {
		return fmt.Errorf("%w: negative guest count", ErrInvalidInput)
	}
	return nil
}
