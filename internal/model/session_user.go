package model

import "time"

// SessionUser is the signed-in Fitness Prime user. The table holds at most
// one row, keyed by Slot.
type SessionUser struct {
	Slot       string    `gorm:"primaryKey;size:32"`
	UserID     string    `gorm:"size:64;not null"`
	FirstName  string    `gorm:"size:128"`
	LastName   string    `gorm:"size:128"`
	Phone      string    `gorm:"size:64"`
	Mail       string    `gorm:"size:256"`
	SignedInAt time.Time `gorm:"not null"`
	UpdatedAt  time.Time
}
