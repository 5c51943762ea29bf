// Package http exposes the lodging reservation core over JSON.
//
// Callers identify their browsing session with the X-Session-ID header and
// prove ownership of a booking with the X-Edit-Token header. Error bodies are
// localized to Czech unless Accept-Language prefers English.
//
// The router exposes the following endpoints:
//   - GET /health: 200 when storage answers a ping, 503 otherwise.
//   - GET /rooms: room catalog from the settings file.
//   - GET /availability?date=&room=: status of one room on one date.
//   - GET /calendar?from=&to=: status grid for every room over [from, to).
//   - POST /bookings/validate: dry-run conflict check, {"ok"} or {"ok":false,"conflict"}.
//   - POST /prices: per_room or bulk quote.
//   - POST /holds, GET /holds, PUT /holds/{id}, DELETE /holds/{id}: session holds.
//   - POST /holds/reap: removes expired holds.
//   - POST /bookings, GET /bookings/{id}, PUT /bookings/{id}, DELETE /bookings/{id}: bookings.
//
// Request/response DTOs live in dto.go so tests and documentation share the
// same ground truth.
package http
