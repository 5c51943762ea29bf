package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRange normalizes a stay to UTC midnights and enforces start < end and the stay cap.
func validateRange(start, end time.Time, maxNights int) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return start, end, &InvalidRangeError{Start: start, End: end, Reason: "start and end dates are required"}
	}
	start, end = daterange.Day(start), daterange.Day(end)
	if !start.Before(end) {
		return start, end, &InvalidRangeError{Start: start, End: end, Reason: "start must be before end"}
	}
	if maxNights > 0 && daterange.Nights(start, end) > maxNights {
		return start, end, &InvalidRangeError{Start: start, End: end, Reason: fmt.Sprintf("stay exceeds %d nights", maxNights)}
	}
	return start, end, nil
}

// validateRooms requires a non-empty list of distinct rooms the property has.
func validateRooms(property Property, roomIDs []string) error {
	if len(roomIDs) == 0 {
		vErr := &ValidationError{}
		vErr.add("room_ids", "at least one room is required")
		return vErr
	}
	seen := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		if _, ok := property.Room(id); !ok {
			return &InvalidRangeError{RoomID: id, Reason: "unknown room"}
		}
		if _, dup := seen[id]; dup {
			vErr := &ValidationError{}
			vErr.add("room_ids", "room "+id+" is listed twice")
			return vErr
		}
		seen[id] = struct{}{}
	}
	return nil
}

// validateGuests checks counts against the beds of the given rooms. Toddlers need no bed.
func validateGuests(property Property, field string, guests pricing.GuestBreakdown, roomIDs []string) *ValidationError {
	vErr := &ValidationError{}
	if guests.InternalAdults < 0 || guests.ExternalAdults < 0 || guests.InternalChildren < 0 ||
		guests.ExternalChildren < 0 || guests.Toddlers < 0 {
		vErr.add(field, "guest counts must not be negative")
		return vErr
	}
	beds := 0
	for _, id := range roomIDs {
		room, _ := property.Room(id)
		beds += room.Beds
	}
	if guests.Beds() > beds {
		vErr.add(field, fmt.Sprintf("%d guests exceed %d beds", guests.Beds(), beds))
	}
	return vErr
}

type contactInput struct {
	Name  string `validate:"required,max=200"`
	Email string `validate:"required,email,max=254"`
	Phone string `validate:"omitempty,max=32"`
	Note  string `validate:"max=2000"`
}

func normalizeContact(c persistence.Contact) (persistence.Contact, *ValidationError) {
	c = persistence.Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
		Note:  strings.TrimSpace(c.Note),
	}
	vErr := &ValidationError{}
	err := validate.Struct(contactInput(c))
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			vErr.add("contact."+strings.ToLower(fe.Field()), contactMessage(fe))
		}
	}
	return c, vErr
}

func contactMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "invalid"
}

// mapStoreError translates persistence sentinels into application errors.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return &ConflictError{Status: availability.StatusBooked, Reason: "rooms were booked concurrently"}
	}
	return err
}
