package schedule

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// Occupies reports whether a reservation in this state holds a seat.
// Closed reservations count: the seat was used.
func (s Status) Occupies() bool {
	return s == StatusPending || s == StatusClosed
}

// Trainer is the person leading a class.
type Trainer struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}

// FullName joins the trainer's names.
func (t Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// Activity is the kind of class (spinning, yoga...).
type Activity struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Reservation is one user's claim on a session.
type Reservation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	SessionID  string    `json:"sessionId,omitempty"`
	Status     Status    `json:"status"`
	ReservedAt time.Time `json:"reservedAt"`
}

// Session is one scheduled class instance.
type Session struct {
	ID            string        `json:"id"`
	Name          string        `json:"name,omitempty"`
	Description   string        `json:"description,omitempty"`
	StartTime     time.Time     `json:"startTime"`
	EndTime       time.Time     `json:"endTime"`
	TotalCapacity *int          `json:"totalCapacity"` // nil when the backend sent nothing usable
	Trainer       *Trainer      `json:"trainer,omitempty"`
	Activity      *Activity     `json:"activity,omitempty"`
	Reservations  []Reservation `json:"reservations"`
}

// Title picks the display title: activity name, then class name, then trainer name.
func (s Session) Title() string {
	if s.Activity != nil && s.Activity.Name != "" {
		return s.Activity.Name
	}
	if s.Name != "" {
		return s.Name
	}
	if s.Trainer != nil && s.Trainer.FirstName != "" {
		return s.Trainer.FirstName
	}
	return "Clase"
}

// Summary is the description shown under the title.
func (s Session) Summary() string {
	if s.Activity != nil && s.Activity.Description != "" {
		return s.Activity.Description
	}
	return s.Description
}

// ImageURL picks the trainer photo first, then the activity image.
func (s Session) ImageURL() string {
	if s.Trainer != nil && s.Trainer.PhotoURL != "" {
		return s.Trainer.PhotoURL
	}
	if s.Activity != nil {
		return s.Activity.ImageURL
	}
	return ""
}

// User is the signed-in identity.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"tel,omitempty"`
	Mail      string `json:"mail,omitempty"`
}
