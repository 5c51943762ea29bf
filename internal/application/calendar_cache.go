package application

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/michalprusek/marianska-sub005/internal/availability"
	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

// calendarCache keeps recently painted calendars so repeated month views do not
// reload the store. Entries expire after ttl and are purged on every local write.
type calendarCache struct {
	ttl     time.Duration
	entries *expirable.LRU[string, Calendar]
}

func newCalendarCache(size int, ttl time.Duration) *calendarCache {
	if ttl <= 0 {
		return nil
	}
	if size <= 0 {
		size = defaultCalendarCacheSize
	}
	return &calendarCache{ttl: ttl, entries: expirable.NewLRU[string, Calendar](size, nil, ttl)}
}

func (c *calendarCache) Get(key string) (Calendar, bool) {
	if c == nil {
		return Calendar{}, false
	}
	return c.entries.Get(key)
}

// Store caches cal unless an active hold in snap would expire while the entry is live.
func (c *calendarCache) Store(key string, cal Calendar, snap availability.Snapshot) {
	if c == nil {
		return
	}
	horizon := snap.Now.Add(c.ttl)
	for _, h := range snap.Holds {
		if h.ActiveAt(snap.Now) && !h.ExpiresAt.After(horizon) {
			return
		}
	}
	c.entries.Add(key, cal)
}

func (c *calendarCache) Invalidate() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

func (c *calendarCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func calendarCacheKey(from, to time.Time, sessionID string) string {
	var b strings.Builder
	b.WriteString(daterange.Format(from))
	b.WriteString("|")
	b.WriteString(daterange.Format(to))
	b.WriteString("|")
	b.WriteString(sessionID)
	return b.String()
}
