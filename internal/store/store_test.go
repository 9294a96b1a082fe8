package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fitprime-classes/internal/model"
	"fitprime-classes/internal/schedule"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	// A named in-memory database per test keeps tests isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.SessionUser{}, &model.ActionRecord{}))
	return testDB
}

func TestGormStore_SessionUserSQL(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedErr      bool
	}{
		{
			name: "Save upserts the single slot",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_users"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("slot") DO UPDATE SET`)).
					WithArgs("current", "u1", "Ana", "Pérez", "", "ana@example.com", Any{}, Any{}).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.SaveSessionUser(context.Background(), schedule.User{ID: "u1", FirstName: "Ana", LastName: "Pérez", Mail: "ana@example.com"})
			},
		},
		{
			name: "Clear deletes the slot",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "session_users" WHERE slot = $1`)).
					WithArgs("current").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.ClearSessionUser(context.Background())
			},
		},
		{
			name: "Read failure is wrapped",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "session_users" WHERE slot = $1`)).
					WithArgs("current", 1).
					WillReturnError(errors.New("connection reset"))
			},
			run: func(s Store) error {
				_, err := s.SessionUser(context.Background())
				return err
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := tc.run(s)
			if tc.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_RecordActionSQL(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "action_records"`)).
		WithArgs("reserve", "u1", "c1", "", "rejected", "class is sold out", Any{}).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	record := &model.ActionRecord{
		Action:  model.ActionReserve,
		UserID:  "u1",
		ClassID: "c1",
		Outcome: model.OutcomeRejected,
		Error:   "class is sold out",
	}
	require.NoError(t, s.RecordAction(context.Background(), record))

	assert.Equal(t, int64(7), record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SessionUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newSQLiteDB(t))

	user, err := s.SessionUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user, "no session before sign-in")

	require.NoError(t, s.SaveSessionUser(ctx, schedule.User{ID: "u1", FirstName: "Ana"}))
	require.NoError(t, s.SaveSessionUser(ctx, schedule.User{ID: "u2", FirstName: "Bruno", LastName: "Díaz", Phone: "11-5555"}))

	user, err = s.SessionUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, schedule.User{ID: "u2", FirstName: "Bruno", LastName: "Díaz", Phone: "11-5555"}, *user)

	require.NoError(t, s.ClearSessionUser(ctx))
	require.NoError(t, s.ClearSessionUser(ctx), "clearing twice is fine")

	user, err = s.SessionUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGormStore_RecentActions(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newSQLiteDB(t))
	base := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)

	for i, outcome := range []model.ActionOutcome{model.OutcomeSucceeded, model.OutcomeFailed, model.OutcomeRejected} {
		require.NoError(t, s.RecordAction(ctx, &model.ActionRecord{
			Action:    model.ActionCancel,
			ClassID:   fmt.Sprintf("c%d", i),
			Outcome:   outcome,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := s.RecentActions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c2", records[0].ClassID)
	assert.Equal(t, "c1", records[1].ClassID)

	records, err = s.RecentActions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestGormStore_RecordActionTruncatesLongErrors(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newSQLiteDB(t))

	// 511 ASCII bytes put the two-byte "ñ" across the column limit.
	long := strings.Repeat("a", 511) + strings.Repeat("ñ", 10)
	require.NoError(t, s.RecordAction(ctx, &model.ActionRecord{
		Action:  model.ActionReserve,
		Outcome: model.OutcomeFailed,
		Error:   long,
	}))

	records, err := s.RecentActions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, strings.Repeat("a", 511), records[0].Error)
	assert.True(t, utf8.ValidString(records[0].Error))
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
