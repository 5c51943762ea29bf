package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRate is matched by every MissingRateError.
	ErrMissingRate = errors.New("pricing: missing rate")
	// ErrInvalidInput is returned for negative counts, negative nights or unknown tiers and sizes.
	ErrInvalidInput = errors.New("pricing: invalid input")
)

// MissingRateError reports a tier/size combination (or the bulk tariff) absent from the rate settings.
type MissingRateError struct {
	Tier Tier
	Size Size
	Bulk bool
}

func (e *MissingRateError) Error() string {
	if e.Bulk {
		return "pricing: missing bulk tariff"
	}
	return fmt.Sprintf("pricing: missing rate for tier %q size %q", e.Tier, e.Size)
}

// Is lets errors.Is match ErrMissingRate.
func (e *MissingRateError) Is(target error) bool {
	return target == ErrMissingRate
}
