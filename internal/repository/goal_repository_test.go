package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
)

func goalRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "metric_id", "target_value", "direction", "active", "created_by", "created_at", "updated_at"}).
		AddRow("goal-1", "Score 50", "metric-1", 50.0, "AT_LEAST", true, "coach-1", now, now)
}

func TestGoalRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goals")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	goal := models.Goal{Name: "Score 50", MetricID: "metric-1", TargetValue: 50, Direction: models.DirectionAtLeast, Active: true, CreatedBy: "coach-1"}
	require.NoError(t, repo.Create(context.Background(), &goal))
	assert.NotEmpty(t, goal.ID)
	assert.False(t, goal.CreatedAt.IsZero())
	assert.Equal(t, goal.CreatedAt, goal.UpdatedAt)
}

func TestGoalRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGoalRepositoryListFiltersByActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE 1=1 AND active = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(true).
		WillReturnRows(goalRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM goals WHERE 1=1 AND active = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	goals, total, err := repo.List(context.Background(), models.GoalFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "goal-1", goals[0].ID)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGoalRepositoryListActiveOrdersByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	now := time.Now().UTC()
	rows := goalRows(now).
		AddRow("goal-2", "Limit turnovers", "metric-2", 15.0, "AT_MOST", true, "coach-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM goals WHERE active = TRUE ORDER BY id ASC")).
		WillReturnRows(rows)

	goals, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "goal-1", goals[0].ID)
	assert.Equal(t, "goal-2", goals[1].ID)
}

func TestGoalRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE goals SET active = FALSE")).
		WithArgs("goal-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "goal-1"))
}

func TestGoalRepositoryDeactivateMissingGoal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGoalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE goals SET active = FALSE")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
