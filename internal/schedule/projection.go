package schedule

import (
	"slices"
	"strconv"
	"time"
)

// Action is the one reservation control offered for a session.
type Action string

const (
	ActionReserve Action = "reserve"
	ActionCancel  Action = "cancel"
	ActionSoldOut Action = "sold_out"
)

// CapacityUnknown is shown when the backend sent no usable capacity.
const CapacityUnknown = "N/A"

// Projection is a session together with everything the renderer needs to
// draw its card and its reservation control.
type Projection struct {
	Session       Session      `json:"session"`
	Occupied      int          `json:"occupied"`
	Available     *int         `json:"available"`
	CapacityLabel string       `json:"capacityLabel"`
	MyPending     *Reservation `json:"myPendingReservation,omitempty"`
	Action        Action       `json:"action"`
	LoginRequired bool         `json:"loginRequired"`
}

// Project derives available capacity, the user's own pending reservation and
// the reservation action for a session. user may be nil.
func Project(s Session, user *User) Projection {
	p := Projection{
		Session:       s,
		CapacityLabel: CapacityUnknown,
		LoginRequired: user == nil,
	}

	for _, r := range s.Reservations {
		if r.Status.Occupies() {
			p.Occupied++
		}
	}

	if s.TotalCapacity != nil {
		available := max(0, *s.TotalCapacity-p.Occupied)
		p.Available = &available
		p.CapacityLabel = strconv.Itoa(available)
	}

	if user != nil {
		// The backend should keep one pending reservation per user and
		// session; take the first if it does not.
		for i := range s.Reservations {
			r := s.Reservations[i]
			if r.UserID == user.ID && r.Status == StatusPending {
				p.MyPending = &r
				break
			}
		}
	}

	switch {
	case p.MyPending != nil:
		p.Action = ActionCancel
	case p.Available != nil && *p.Available == 0:
		p.Action = ActionSoldOut
	default:
		p.Action = ActionReserve
	}
	return p
}

// ProjectAll projects every session for the same user.
func ProjectAll(sessions []Session, user *User) []Projection {
	out := make([]Projection, len(sessions))
	for i, s := range sessions {
		out[i] = Project(s, user)
	}
	return out
}

// ReservationEntry is one of the user's reservations with its class embedded.
type ReservationEntry struct {
	Reservation Reservation `json:"reservation"`
	Class       *Session    `json:"class,omitempty"`
}

// ReservationItem is a ReservationEntry as shown on the "Mis Reservas" page.
type ReservationItem struct {
	ReservationEntry
	Cancellable bool `json:"cancellable"`
}

// MyReservationsView is the user's reservation history with counters.
type MyReservationsView struct {
	Items     []ReservationItem `json:"items"`
	Pending   int               `json:"pending"`
	Closed    int               `json:"closed"`
	Cancelled int               `json:"cancelled"`
}

// MyReservations orders entries newest reservation first and flags which
// pending ones can still be cancelled (the class starts after now+lead).
func MyReservations(entries []ReservationEntry, now time.Time, lead time.Duration) MyReservationsView {
	view := MyReservationsView{Items: make([]ReservationItem, 0, len(entries))}
	cutoff := now.Add(lead)

	for _, e := range entries {
		item := ReservationItem{ReservationEntry: e}
		switch e.Reservation.Status {
		case StatusPending:
			view.Pending++
			item.Cancellable = e.Class != nil && e.Class.StartTime.After(cutoff)
		case StatusClosed:
			view.Closed++
		case StatusCancelled:
			view.Cancelled++
		}
		view.Items = append(view.Items, item)
	}

	slices.SortStableFunc(view.Items, func(a, b ReservationItem) int {
		return b.Reservation.ReservedAt.Compare(a.Reservation.ReservedAt)
	})
	return view
}
