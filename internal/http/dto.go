package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/michalprusek/marianska-sub005/internal/application"
	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
	"github.com/michalprusek/marianska-sub005/internal/persistence"
	"github.com/michalprusek/marianska-sub005/internal/pricing"
)

const maxRequestBody = 1 << 20

const msgBadDate = "must be a date in YYYY-MM-DD format"

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and checks its tags. Malformed
// bodies return a plain error; tag violations return *application.ValidationError.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode body: trailing data")
	}

	err := requestValidator.Struct(dst)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	vErr := &application.ValidationError{FieldErrors: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		vErr.FieldErrors[field] = fieldMessage(fe)
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "required"
	case "min":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "required"
	}
	return "invalid"
}

// parseDates converts start/end strings, collecting format errors per field.
func parseDates(vErr *application.ValidationError, start, end string) (time.Time, time.Time) {
	s, err := daterange.Parse(start)
	if err != nil {
		addFieldError(vErr, "start", msgBadDate)
	}
	e, err := daterange.Parse(end)
	if err != nil {
		addFieldError(vErr, "end", msgBadDate)
	}
	return s, e
}

func addFieldError(vErr *application.ValidationError, field, msg string) {
	if vErr.FieldErrors == nil {
		vErr.FieldErrors = make(map[string]string)
	}
	vErr.FieldErrors[field] = msg
}

func validationResult(vErr *application.ValidationError) error {
	if len(vErr.FieldErrors) == 0 {
		return nil
	}
	return vErr
}

type guestEntry struct {
	Kind string `json:"kind" validate:"required,oneof=adult child toddler"`
	Tier string `json:"tier" validate:"omitempty,oneof=internal external"`
}

// guestsInput accepts either counts or a list of individual guests. A
// non-empty list wins.
type guestsInput struct {
	InternalAdults   int          `json:"internal_adults" validate:"min=0"`
	ExternalAdults   int          `json:"external_adults" validate:"min=0"`
	InternalChildren int          `json:"internal_children" validate:"min=0"`
	ExternalChildren int          `json:"external_children" validate:"min=0"`
	Toddlers         int          `json:"toddlers" validate:"min=0"`
	List             []guestEntry `json:"list,omitempty" validate:"omitempty,dive"`
}

func (g guestsInput) breakdown() (pricing.GuestBreakdown, error) {
	if len(g.List) == 0 {
		return pricing.GuestBreakdown{
			InternalAdults:   g.InternalAdults,
			ExternalAdults:   g.ExternalAdults,
			InternalChildren: g.InternalChildren,
			ExternalChildren: g.ExternalChildren,
			Toddlers:         g.Toddlers,
		}, nil
	}
	guests := make([]pricing.Guest, len(g.List))
	for i, entry := range g.List {
		guests[i] = pricing.Guest{Kind: pricing.GuestKind(entry.Kind), Tier: pricing.Tier(entry.Tier)}
	}
	return pricing.Tally(guests)
}

type holdRequest struct {
	Start   string      `json:"start" validate:"required"`
	End     string      `json:"end" validate:"required"`
	RoomIDs []string    `json:"room_ids" validate:"required,min=1,dive,required"`
	Guests  guestsInput `json:"guests"`
	Price   int64       `json:"price" validate:"min=0"`
}

func (req holdRequest) params(sessionID string) (application.CreateHoldParams, error) {
	vErr := &application.ValidationError{}
	start, end := parseDates(vErr, req.Start, req.End)
	guests, err := req.Guests.breakdown()
	if err != nil {
		addFieldError(vErr, "guests", "invalid")
	}
	if err := validationResult(vErr); err != nil {
		return application.CreateHoldParams{}, err
	}
	return application.CreateHoldParams{
		SessionID: sessionID,
		Start:     start,
		End:       end,
		RoomIDs:   req.RoomIDs,
		Guests:    guests,
		Price:     req.Price,
	}, nil
}

type roomStayInput struct {
	RoomID string      `json:"room_id" validate:"required"`
	Guests guestsInput `json:"guests"`
}

type contactInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// stayRequest is the body of price quotes and booking writes. Contact is
// ignored by quotes.
type stayRequest struct {
	Start   string          `json:"start" validate:"required"`
	End     string          `json:"end" validate:"required"`
	Model   string          `json:"model" validate:"required,oneof=per_room bulk"`
	Rooms   []roomStayInput `json:"rooms" validate:"required_if=Model per_room,dive"`
	Guests  guestsInput     `json:"guests"`
	Contact contactInput    `json:"contact"`
}

func (req stayRequest) stay() (time.Time, time.Time, application.BookingVariant, error) {
	vErr := &application.ValidationError{}
	start, end := parseDates(vErr, req.Start, req.End)

	var variant application.BookingVariant
	switch pricing.Model(req.Model) {
	case pricing.ModelBulk:
		guests, err := req.Guests.breakdown()
		if err != nil {
			addFieldError(vErr, "guests", "invalid")
		}
		variant = application.BulkBooking{Guests: guests}
	default:
		rooms := make([]application.RoomStay, len(req.Rooms))
		for i, room := range req.Rooms {
			guests, err := room.Guests.breakdown()
			if err != nil {
				addFieldError(vErr, fmt.Sprintf("rooms[%d].guests", i), "invalid")
			}
			rooms[i] = application.RoomStay{RoomID: room.RoomID, Guests: guests}
		}
		variant = application.PerRoomBooking{Rooms: rooms}
	}
	if err := validationResult(vErr); err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	return start, end, variant, nil
}

func (req stayRequest) contact() persistence.Contact {
	return persistence.Contact{
		Name:  req.Contact.Name,
		Email: req.Contact.Email,
		Phone: req.Contact.Phone,
		Note:  req.Contact.Note,
	}
}

type validateRequest struct {
	Start            string   `json:"start" validate:"required"`
	End              string   `json:"end" validate:"required"`
	RoomIDs          []string `json:"room_ids" validate:"required,min=1,dive,required"`
	ExcludeBookingID string   `json:"exclude_booking_id"`
}

type holdResponse struct {
	ProposalID string                 `json:"proposal_id"`
	RoomIDs    []string               `json:"room_ids"`
	Start      string                 `json:"start"`
	End        string                 `json:"end"`
	Guests     pricing.GuestBreakdown `json:"guests"`
	Price      int64                  `json:"price"`
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
}

func newHoldResponse(h persistence.Hold) holdResponse {
	return holdResponse{
		ProposalID: h.ID,
		RoomIDs:    h.RoomIDs,
		Start:      daterange.Format(h.Start),
		End:        daterange.Format(h.End),
		Guests:     h.Guests,
		Price:      h.Price,
		CreatedAt:  h.CreatedAt,
		ExpiresAt:  h.ExpiresAt,
	}
}

type roomStayResponse struct {
	RoomID string                 `json:"room_id"`
	Guests pricing.GuestBreakdown `json:"guests"`
}

type contactResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Note  string `json:"note,omitempty"`
}

type bookingResponse struct {
	ID              string                 `json:"id"`
	Model           pricing.Model          `json:"model"`
	Start           string                 `json:"start"`
	End             string                 `json:"end"`
	Nights          int                    `json:"nights"`
	Rooms           []roomStayResponse     `json:"rooms"`
	Guests          pricing.GuestBreakdown `json:"guests"`
	Contact         contactResponse        `json:"contact"`
	TotalPrice      int64                  `json:"total_price"`
	SettingsVersion string                 `json:"settings_version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	EditToken       string                 `json:"edit_token,omitempty"`
}

func newBookingResponse(b persistence.Booking) bookingResponse {
	rooms := make([]roomStayResponse, len(b.Rooms))
	for i, r := range b.Rooms {
		rooms[i] = roomStayResponse{RoomID: r.RoomID, Guests: r.Guests}
	}
	return bookingResponse{
		ID:              b.ID,
		Model:           b.Model,
		Start:           daterange.Format(b.Start),
		End:             daterange.Format(b.End),
		Nights:          daterange.Nights(b.Start, b.End),
		Rooms:           rooms,
		Guests:          b.Guests,
		Contact:         contactResponse(b.Contact),
		TotalPrice:      b.TotalPrice,
		SettingsVersion: b.SettingsVersion,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type conflictResponse struct {
	RoomID string              `json:"room_id"`
	Date   string              `json:"date,omitempty"`
	Status availability.Status `json:"status"`
	Reason string              `json:"reason,omitempty"`
}

type validateResponse struct {
	OK       bool              `json:"ok"`
	Conflict *conflictResponse `json:"conflict,omitempty"`
}

type availabilityResponse struct {
	Date   string              `json:"date"`
	RoomID string              `json:"room_id"`
	Status availability.Status `json:"status"`
	Detail availability.Detail `json:"detail"`
}

type calendarResponse struct {
	From  string                                    `json:"from"`
	To    string                                    `json:"to"`
	Rooms map[string]map[string]availability.Result `json:"rooms"`
}

type reapResponse struct {
	Removed int `json:"removed"`
}
