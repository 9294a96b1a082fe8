package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitprime-classes/internal/model"
	"fitprime-classes/internal/schedule"
)

const currentSlot = "current"

// DefaultJournalLimit caps RecentActions when no limit is given.
const DefaultJournalLimit = 50

// Store defines the interface for all local database operations.
type Store interface {
	SessionUser(ctx context.Context) (*schedule.User, error)
	SaveSessionUser(ctx context.Context, user schedule.User) error
	ClearSessionUser(ctx context.Context) error

	RecordAction(ctx context.Context, record *model.ActionRecord) error
	RecentActions(ctx context.Context, limit int) ([]model.ActionRecord, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

// SessionUser returns the persisted session user, or nil when nobody is signed in.
func (s *gormStore) SessionUser(ctx context.Context) (*schedule.User, error) {
	var row model.SessionUser
	err := s.db.WithContext(ctx).First(&row, "slot = ?", currentSlot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	return &schedule.User{
		ID:        row.UserID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		Mail:      row.Mail,
	}, nil
}

// SaveSessionUser replaces the session user.
func (s *gormStore) SaveSessionUser(ctx context.Context, user schedule.User) error {
	row := model.SessionUser{
		Slot:       currentSlot,
		UserID:     user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		Mail:       user.Mail,
		SignedInAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "first_name", "last_name", "phone", "mail", "signed_in_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save session user %s: %w", user.ID, err)
	}
	return nil
}

// ClearSessionUser removes the session user. Clearing an empty session is not an error.
func (s *gormStore) ClearSessionUser(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("slot = ?", currentSlot).Delete(&model.SessionUser{}).Error; err != nil {
		return fmt.Errorf("failed to clear session user: %w", err)
	}
	return nil
}

// RecordAction appends an entry to the action journal.
func (s *gormStore) RecordAction(ctx context.Context, record *model.ActionRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	record.Error = model.TruncateError(record.Error)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record %s action: %w", record.Action, err)
	}
	return nil
}

// RecentActions returns the newest journal entries first.
func (s *gormStore) RecentActions(ctx context.Context, limit int) ([]model.ActionRecord, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	records := make([]model.ActionRecord, 0, limit)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent actions: %w", err)
	}
	return records, nil
}
