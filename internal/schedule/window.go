package schedule

import (
	"slices"
	"time"
)

// DefaultBookingLead is how far ahead of its start a class stops being listed.
const DefaultBookingLead = 30 * time.Minute

// Bookable returns the sessions starting strictly after now+lead, ordered by
// start time. Sessions with an unknown start time are dropped. Equal start
// times keep their input order. The input slice is not modified.
//
// This is a display rule only; the backend enforces its own cutoff.
func Bookable(sessions []Session, now time.Time, lead time.Duration) []Session {
	cutoff := now.Add(lead)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.StartTime.IsZero() || !s.StartTime.After(cutoff) {
			continue
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b Session) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}
