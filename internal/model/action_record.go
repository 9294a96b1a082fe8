package model

import (
	"time"
	"unicode/utf8"
)

// ActionKind is the reservation control that was used.
type ActionKind string

const (
	ActionReserve ActionKind = "reserve"
	ActionCancel  ActionKind = "cancel"
)

// ActionOutcome is how a reserve or cancel attempt ended.
type ActionOutcome string

const (
	OutcomeSucceeded ActionOutcome = "succeeded"
	OutcomeRejected  ActionOutcome = "rejected" // refused locally, nothing was sent
	OutcomeFailed    ActionOutcome = "failed"   // the backend call failed
)

// ActionRecord is one entry of the local reserve/cancel journal.
type ActionRecord struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	Action        ActionKind    `gorm:"size:16;not null" json:"action"`
	UserID        string        `gorm:"size:64;index" json:"userId,omitempty"`
	ClassID       string        `gorm:"size:64" json:"classId,omitempty"`
	ReservationID string        `gorm:"size:64" json:"reservationId,omitempty"`
	Outcome       ActionOutcome `gorm:"size:16;not null" json:"outcome"`
	Error         string        `gorm:"size:512" json:"error,omitempty"`
	CreatedAt     time.Time     `gorm:"not null;index" json:"createdAt"`
}

// MaxErrorLength is the size of the ActionRecord.Error column, in bytes.
const MaxErrorLength = 512

// TruncateError cuts s to MaxErrorLength bytes without splitting a rune.
func TruncateError(s string) string {
	if len(s) <= MaxErrorLength {
		return s
	}
	n := MaxErrorLength
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
