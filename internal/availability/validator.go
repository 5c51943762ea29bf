package availability

import (
	"fmt"
	"time"

	"github.com/michalprusek/marianska-sub005/internal/daterange"
)

// Conflict is the first room and date that blocks a candidate.
type Conflict struct {
	RoomID string
	Date   time.Time
	Status Status
	Reason string
	Detail Detail
}

func (c *Conflict) String() string {
	return fmt.Sprintf("room %s is %s on %s", c.RoomID, c.Status, daterange.Format(c.Date))
}

// Validate checks every room on every date of [start, end) and returns the first
// non-available pair, rooms in the given order and dates ascending within a room.
// A nil result means the candidate may be written.
func (s Snapshot) Validate(start, end time.Time, roomIDs []string, ex Exclusion) *Conflict {
	for _, roomID := range roomIDs {
		for date := range daterange.Dates(start, end) {
			res := s.ResolveExcluding(date, roomID, ex)
			if res.Status == StatusAvailable {
				continue
			}
			return &Conflict{
				RoomID: roomID,
				Date:   date,
				Status: res.Status,
				Reason: reason(res),
				Detail: res.Detail,
			}
		}
	}
	return nil
}

func reason(res Result) string {
	if res.Status == StatusBlocked && res.Detail.Reason != "" {
		return res.Detail.Reason
	}
	return string(res.Status)
}

// Grid resolves every room on every date of [from, to) for calendar painting.
func (s Snapshot) Grid(from, to time.Time, roomIDs []string, sessionID string) map[string]map[string]Result {
	out := make(map[string]map[string]Result, len(roomIDs))
	for _, roomID := range roomIDs {
		days := make(map[string]Result)
		for date := range daterange.Dates(from, to) {
			days[daterange.Format(date)] = s.Resolve(date, roomID, sessionID)
		}
		out[roomID] = days
	}
	return out
}
