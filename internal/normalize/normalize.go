package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/schedule"
)

// Normalizer converts raw backend records into schedule values. It is the
// only place where raw shapes are read. Its methods are pure: the same input
// always yields the same output and nothing is ever returned as an error.
type Normalizer struct {
	loc *time.Location
}

// New returns a Normalizer that reads zone-less timestamps in loc.
func New(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return Normalizer{loc: loc}
}

type rawPerson struct {
	MongoID   json.RawMessage `json:"_id"`
	ID        json.RawMessage `json:"id"`
	FirstName json.RawMessage `json:"nombre"`
	LastName  json.RawMessage `json:"apellido"`
	PhotoURL  json.RawMessage `json:"fotoUrl"`
	Photo     json.RawMessage `json:"foto"`
}

// Session converts one raw class record.
func (n Normalizer) Session(raw backend.RawClass) schedule.Session {
	s := schedule.Session{
		ID:          firstText(raw.MongoID, raw.ID),
		Name:        text(raw.Name),
		Description: text(raw.Description),
		StartTime:   instant(raw.Start, n.loc),
		EndTime:     instant(raw.End, n.loc),
		Trainer:     trainer(raw.Trainer),
		Activity:    activityFrom(raw.Activity),
	}

	if total, ok := integer(raw.Capacity); ok {
		s.TotalCapacity = &total
	} else if total, ok := integer(raw.AvailableCapacity); ok {
		s.TotalCapacity = &total
	}

	items := elements(raw.Reservations)
	s.Reservations = make([]schedule.Reservation, 0, len(items)+1)
	for _, item := range items {
		var r backend.RawReservation
		if !object(item, &r) {
			continue
		}
		s.Reservations = append(s.Reservations, n.reservation(r, s.ID))
	}

	n.mergeUserReservation(&s, raw)
	return s
}

// Sessions converts a list of raw class records.
func (n Normalizer) Sessions(raws []backend.RawClass) []schedule.Session {
	out := make([]schedule.Session, len(raws))
	for i, raw := range raws {
		out[i] = n.Session(raw)
	}
	return out
}

// mergeUserReservation folds the per-user fields of con-reservas-usuario
// into the reservation list.
func (n Normalizer) mergeUserReservation(s *schedule.Session, raw backend.RawClass) {
	var embedded backend.RawReservation
	if object(raw.UserReservation, &embedded) {
		r := n.reservation(embedded, s.ID)
		if r.UserID == "" {
			r.UserID = raw.RequestedFor
		}
		if !containsReservation(s.Reservations, r) {
			s.Reservations = append(s.Reservations, r)
		}
		return
	}

	if isNull(raw.UserReservationState) || raw.RequestedFor == "" {
		return
	}
	for _, r := range s.Reservations {
		if r.UserID == raw.RequestedFor {
			return
		}
	}
	s.Reservations = append(s.Reservations, schedule.Reservation{
		UserID:    raw.RequestedFor,
		SessionID: s.ID,
		Status:    status(raw.UserReservationState),
	})
}

func containsReservation(list []schedule.Reservation, r schedule.Reservation) bool {
	for _, existing := range list {
		if r.ID != "" && existing.ID == r.ID {
			return true
		}
	}
	return false
}

// reservation converts a reservation nested in a class.
func (n Normalizer) reservation(raw backend.RawReservation, sessionID string) schedule.Reservation {
	return schedule.Reservation{
		ID:         firstText(raw.MongoID, raw.ID),
		UserID:     reference(raw.User),
		SessionID:  sessionID,
		Status:     status(raw.Status),
		ReservedAt: instant(raw.ReservedAt, n.loc),
	}
}

// ReservationEntry converts a top-level reservation that embeds its class.
func (n Normalizer) ReservationEntry(raw backend.RawReservation) schedule.ReservationEntry {
	entry := schedule.ReservationEntry{}

	var class backend.RawClass
	classID := reference(raw.Class)
	if object(raw.Class, &class) {
		s := n.Session(class)
		entry.Class = &s
	}
	entry.Reservation = n.reservation(raw, classID)
	return entry
}

// ReservationEntries converts a list of top-level reservations.
func (n Normalizer) ReservationEntries(raws []backend.RawReservation) []schedule.ReservationEntry {
	out := make([]schedule.ReservationEntry, len(raws))
	for i, raw := range raws {
		out[i] = n.ReservationEntry(raw)
	}
	return out
}

// Activity converts one entry of the activity list.
func (n Normalizer) Activity(raw backend.RawActivity) schedule.Activity {
	return schedule.Activity{
		ID:          firstText(raw.MongoID, raw.ID),
		Name:        text(raw.Name),
		Description: text(raw.Description),
		ImageURL:    firstText(raw.ImageURL, raw.Image),
	}
}

// Activities converts the activity list.
func (n Normalizer) Activities(raws []backend.RawActivity) []schedule.Activity {
	out := make([]schedule.Activity, len(raws))
	for i, raw := range raws {
		out[i] = n.Activity(raw)
	}
	return out
}

func trainer(raw json.RawMessage) *schedule.Trainer {
	var p rawPerson
	if !object(raw, &p) {
		return nil
	}
	return &schedule.Trainer{
		ID:        firstText(p.MongoID, p.ID),
		FirstName: text(p.FirstName),
		LastName:  text(p.LastName),
		PhotoURL:  firstText(p.PhotoURL, p.Photo),
	}
}

func activityFrom(raw json.RawMessage) *schedule.Activity {
	var a backend.RawActivity
	if !object(raw, &a) {
		return nil
	}
	act := Normalizer{}.Activity(a)
	return &act
}

// reference reads an id that is either inline or inside a populated object.
func reference(raw json.RawMessage) string {
	var ref struct {
		MongoID json.RawMessage `json:"_id"`
		ID      json.RawMessage `json:"id"`
	}
	if object(raw, &ref) {
		if id := firstText(ref.MongoID, ref.ID); id != "" {
			return id
		}
	}
	return text(raw)
}

func status(raw json.RawMessage) schedule.Status {
	switch strings.ToLower(text(raw)) {
	case "pendiente", "pending":
		return schedule.StatusPending
	case "cerrada", "closed":
		return schedule.StatusClosed
	case "cancelada", "cancelled", "canceled":
		return schedule.StatusCancelled
	default:
		return schedule.StatusUnknown
	}
}
