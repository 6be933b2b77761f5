package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestProgressRepositoryInsertAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goal_progress")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := models.ProgressRecord{
		GoalID:      "goal-1",
		SessionID:   "session-1",
		ActualValue: 55,
		TargetValue: 50,
		Delta:       5,
		Status:      models.StatusMet,
	}
	err := repo.Insert(context.Background(), &record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.CalculatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryInsertTruncatesTimestamp(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goal_progress")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	at := time.Date(2026, 3, 14, 19, 30, 0, 123456789, time.UTC)
	record := models.ProgressRecord{ID: "rec-1", GoalID: "goal-1", SessionID: "session-1", CalculatedAt: at}
	require.NoError(t, repo.Insert(context.Background(), &record))
	assert.Equal(t, at.Truncate(time.Microsecond), record.CalculatedAt)
	assert.Zero(t, record.CalculatedAt.Nanosecond()%1000)
}

func TestProgressRepositoryHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "goal_id", "session_id", "actual_value", "target_value", "delta", "status", "calculated_at"}).
		AddRow("rec-2", "goal-1", "session-2", 55.0, 50.0, 5.0, "MET", now).
		AddRow("rec-1", "goal-1", "session-1", 40.0, 50.0, -10.0, "ON_TRACK", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("FROM goal_progress WHERE goal_id = $1 ORDER BY calculated_at DESC LIMIT 10 OFFSET 0")).
		WithArgs("goal-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM goal_progress WHERE goal_id = $1")).
		WithArgs("goal-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	records, total, err := repo.History(context.Background(), "goal-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-2", records[0].ID)
	assert.Equal(t, models.StatusMet, records[0].Status)
	assert.Equal(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepositoryPreviousStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	before := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM goal_progress")).
		WithArgs("goal-1", before, "rec-2").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("ON_TRACK"))

	status, err := repo.PreviousStatus(context.Background(), "goal-1", before, "rec-2")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusOnTrack, *status)
}

func TestProgressRepositoryPreviousStatusNoHistory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	before := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM goal_progress")).
		WithArgs("goal-1", before, "rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	status, err := repo.PreviousStatus(context.Background(), "goal-1", before, "rec-1")
	require.NoError(t, err)
	assert.Nil(t, status)
}
