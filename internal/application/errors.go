package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrForbidden is returned when a session or edit token does not own the resource.
	ErrForbidden = errors.New("application: forbidden")
	// ErrInvalidRange is matched by every *InvalidRangeError.
	ErrInvalidRange = errors.New("application: invalid range")
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("application: conflict")
)

// InvalidRangeError rejects a date range or a room the property does not have.
type InvalidRangeError struct {
	RoomID string
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.RoomID != "" {
		return fmt.Sprintf("invalid range: room %s: %s", e.RoomID, e.Reason)
	}
	return fmt.Sprintf("invalid range %s..%s: %s", daterange.Format(e.Start), daterange.Format(e.End), e.Reason)
}

// Is reports ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// ConflictError names the first room and date that block a hold or booking.
// Date is zero when the store rejected the write without naming a date.
type ConflictError struct {
	RoomID string
	Date   time.Time
	Status availability.Status
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Date.IsZero() {
		return "conflict: " + e.Reason
	}
	return fmt.Sprintf("conflict: room %s is %s on %s", e.RoomID, e.Status, daterange.Format(e.Date))
}

// Is reports ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func conflictFrom(c *availability.Conflict) *ConflictError {
	return &ConflictError{RoomID: c.RoomID, Date: c.Date, Status: c.Status, Reason: c.Reason}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
