package application

import (
	"log/slog"
	"time"
)

const (
	defaultHoldTTL           = 15 * time.Minute
	defaultMaxStayNights     = 60
	defaultCalendarCacheTTL  = 5 * time.Second
	defaultCalendarCacheSize = 256
	maxCalendarDays          = 93
)

type options struct {
	logger         *slog.Logger
	holdTTL        time.Duration
	maxStayNights  int
	invalidator    CacheInvalidator
	cacheTTL       time.Duration
	cacheSize      int
	tokenGenerator func() string
	tokenParams    Argon2idParams
}

func newOptions(opts []Option) options {
	o := options{
		holdTTL:        defaultHoldTTL,
		maxStayNights:  defaultMaxStayNights,
		cacheTTL:       defaultCalendarCacheTTL,
		cacheSize:      defaultCalendarCacheSize,
		tokenGenerator: NewEditToken,
		tokenParams:    DefaultArgon2idParams,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = defaultLogger(o.logger)
	return o
}

// Option configures a service constructor. Services ignore options that do not apply to them.
type Option func(*options)

// WithLogger sets the base logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.holdTTL = d
		}
	}
}

// WithMaxStayNights caps the length of holds and bookings. Zero disables the cap.
func WithMaxStayNights(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxStayNights = n
		}
	}
}

// WithInvalidator registers a cache to purge after every write.
func WithInvalidator(inv CacheInvalidator) Option {
	return func(o *options) { o.invalidator = inv }
}

// WithCalendarCache sizes the calendar cache. A zero ttl disables caching.
func WithCalendarCache(ttl time.Duration, size int) Option {
	return func(o *options) {
		o.cacheTTL = ttl
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithEditTokens overrides how edit tokens are generated and hashed.
func WithEditTokens(generate func() string, params Argon2idParams) Option {
	return func(o *options) {
		if generate != nil {
			o.tokenGenerator = generate
		}
		o.tokenParams = params
	}
}

func (o options) invalidate() {
	if o.invalidator != nil {
		o.invalidator.Invalidate()
	}
}
