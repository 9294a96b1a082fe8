package viewmodel

import (
	"strings"
	"time"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/backend"
)

const dateLayout = "2006-01-02"

// Filter narrows the class list. It lives only in memory.
type Filter struct {
	ActivityID string `json:"activityId,omitempty"`
	Date       string `json:"date,omitempty"` // calendar day, YYYY-MM-DD
}

func (f Filter) normalized() Filter {
	return Filter{
		ActivityID: strings.TrimSpace(f.ActivityID),
		Date:       strings.TrimSpace(f.Date),
	}
}

// Validate rejects a date that is not a calendar day.
func (f Filter) Validate() error {
	if f.Date == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, f.Date); err != nil {
		return apperror.Validation("date", "la fecha debe tener el formato AAAA-MM-DD")
	}
	return nil
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.ActivityID == "" && f.Date == ""
}

func (f Filter) String() string {
	if f.IsZero() {
		return "none"
	}
	return "activity=" + f.ActivityID + " date=" + f.Date
}

func (f Filter) query(loc *time.Location) backend.ClassQuery {
	q := backend.ClassQuery{ActivityID: f.ActivityID}
	if day, err := time.ParseInLocation(dateLayout, f.Date, loc); err == nil {
		q.Date = day
	}
	return q
}
