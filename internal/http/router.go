package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Availability *AvailabilityHandler
	Holds        *HoldHandler
	Bookings     *BookingHandler
	Middleware   []func(http.Handler) http.Handler
	// Health reports whether storage is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}
	r.Use(NegotiateLanguage, SessionFromHeader)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if cfg.Health != nil {
			if err := cfg.Health(req.Context()); err != nil {
				handlerLogger(req.Context(), nil, "Router", "Health").WarnContext(req.Context(), "health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Availability != nil {
		r.Get("/rooms", cfg.Availability.ListRooms)
		r.Get("/availability", cfg.Availability.Resolve)
		r.Get("/calendar", cfg.Availability.Calendar)
		r.Post("/bookings/validate", cfg.Availability.Validate)
	}

	if cfg.Holds != nil {
		r.Route("/holds", func(r chi.Router) {
			r.Get("/", cfg.Holds.List)
			r.Post("/", cfg.Holds.Create)
			r.Post("/reap", cfg.Holds.Reap)
			r.Put("/{proposalID}", cfg.Holds.Replace)
			r.Delete("/{proposalID}", cfg.Holds.Delete)
		})
	}

	if cfg.Bookings != nil {
		r.Post("/prices", cfg.Bookings.Quote)
		r.Post("/bookings", cfg.Bookings.Create)
		r.Get("/bookings/{bookingID}", cfg.Bookings.Get)
		r.Put("/bookings/{bookingID}", cfg.Bookings.Update)
		r.Delete("/bookings/{bookingID}", cfg.Bookings.Cancel)
	}

	return r
}
