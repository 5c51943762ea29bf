package http

import (
	"fmt"
	"strings"
)

// Language is a supported response language.
type Language string

const (
	LanguageCzech   Language = "cs"
	LanguageEnglish Language = "en"
)

type messageKey string

const (
	msgBadRequest         messageKey = "bad_request"
	msgMissingSession     messageKey = "missing_session"
	msgInvalidRange       messageKey = "invalid_range"
	msgUnknownRoom        messageKey = "unknown_room"
	msgConflict           messageKey = "conflict"
	msgConcurrentBooking  messageKey = "concurrent_booking"
	msgPricingUnavailable messageKey = "pricing_unavailable"
	msgValidation         messageKey = "validation"
	msgNotFound           messageKey = "not_found"
	msgForbidden          messageKey = "forbidden"
	msgInternal           messageKey = "internal"
)

var catalog = map[Language]map[messageKey]string{
	LanguageCzech: {
		msgBadRequest:         "Neplatný formát požadavku.",
		msgMissingSession:     "Chybí identifikátor relace (hlavička X-Session-ID).",
		msgInvalidRange:       "Neplatný termín pobytu: %s.",
		msgUnknownRoom:        "Pokoj %s neexistuje.",
		msgConflict:           "Pokoj %s není dne %s volný.",
		msgConcurrentBooking:  "Vybrané pokoje mezitím obsadil jiný host.",
		msgPricingUnavailable: "Cenu nyní nelze spočítat.",
		msgValidation:         "Zadané údaje obsahují chyby.",
		msgNotFound:           "Požadovaný záznam nebyl nalezen.",
		msgForbidden:          "K této operaci nemáte oprávnění.",
		msgInternal:           "Na serveru došlo k chybě.",
	},
	LanguageEnglish: {
		msgBadRequest:         "The request body is malformed.",
		msgMissingSession:     "Missing session identifier (X-Session-ID header).",
		msgInvalidRange:       "Invalid stay dates: %s.",
		msgUnknownRoom:        "Room %s does not exist.",
		msgConflict:           "Room %s is not available on %s.",
		msgConcurrentBooking:  "The selected rooms were just booked by someone else.",
		msgPricingUnavailable: "Pricing is currently unavailable.",
		msgValidation:         "Some fields are invalid.",
		msgNotFound:           "The requested record was not found.",
		msgForbidden:          "You are not allowed to perform this operation.",
		msgInternal:           "An internal server error occurred.",
	},
}

func message(lang Language, key messageKey, args ...any) string {
	texts, ok := catalog[lang]
	if !ok {
		texts = catalog[LanguageCzech]
	}
	text := texts[key]
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

var czechReasons = map[string]string{
	"start and end dates are required": "datum příjezdu i odjezdu je povinné",
	"start must be before end":         "datum příjezdu musí předcházet datu odjezdu",
}

func translateReason(lang Language, reason string) string {
	if lang != LanguageCzech {
		return reason
	}
	if text, ok := czechReasons[reason]; ok {
		return text
	}
	var nights int
	if _, err := fmt.Sscanf(reason, "stay exceeds %d nights", &nights); err == nil {
		return fmt.Sprintf("pobyt nesmí být delší než %d nocí", nights)
	}
	return reason
}

var czechFieldMessages = map[string]string{
	"required":                            "Povinný údaj.",
	"must be a valid email address":       "Zadejte platnou e-mailovou adresu.",
	"must be a date in YYYY-MM-DD format": "Zadejte datum ve formátu RRRR-MM-DD.",
	"at least one room is required":       "Vyberte alespoň jeden pokoj.",
	"guest counts must not be negative":   "Počty hostů nesmí být záporné.",
	"at least one adult is required":      "Pobytu se musí účastnit alespoň jeden dospělý.",
	"booking must be per_room or bulk":    "Rezervace musí být per_room nebo bulk.",
	"price must not be negative":          "Cena nesmí být záporná.",
	"session id is required":              "Chybí identifikátor relace.",
	"must not be negative":                "Hodnota nesmí být záporná.",
	"invalid":                             "Neplatná hodnota.",
}

func translateFieldMessage(lang Language, msg string) string {
	if lang != LanguageCzech {
		return msg
	}
	if text, ok := czechFieldMessages[msg]; ok {
		return text
	}
	var (
		guests, beds int
		limit        string
	)
	switch {
	case strings.HasPrefix(msg, "room ") && strings.HasSuffix(msg, " is listed twice"):
		room := strings.TrimSuffix(strings.TrimPrefix(msg, "room "), " is listed twice")
		return "Pokoj " + room + " je uveden dvakrát."
	case strings.HasPrefix(msg, "must be at most "):
		limit = strings.TrimSuffix(strings.TrimPrefix(msg, "must be at most "), " characters")
		return "Maximální délka je " + limit + " znaků."
	}
	if _, err := fmt.Sscanf(msg, "%d guests exceed %d beds", &guests, &beds); err == nil {
		return fmt.Sprintf("%d hostů se nevejde na %d lůžek.", guests, beds)
	}
	return msg
}
