package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type goalWriterStub struct {
	created       []*models.Goal
	createErr     error
	goal          *models.Goal
	findErr       error
	listed        []models.Goal
	listTotal     int
	listErr       error
	deactivated   []string
	deactivateErr error
}

func (s *goalWriterStub) Create(ctx context.Context, goal *models.Goal) error {
	if s.createErr != nil {
		return s.createErr
	}
	goal.ID = "goal-1"
	s.created = append(s.created, goal)
	return nil
}

func (s *goalWriterStub) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.goal != nil && s.goal.ID == id {
		return s.goal, nil
	}
	return nil, sql.ErrNoRows
}

func (s *goalWriterStub) List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, int, error) {
	return s.listed, s.listTotal, s.listErr
}

func (s *goalWriterStub) Deactivate(ctx context.Context, id string) error {
	if s.deactivateErr != nil {
		return s.deactivateErr
	}
	s.deactivated = append(s.deactivated, id)
	return nil
}

type metricLookupStub struct {
	metrics map[string]*models.MetricDefinition
	all     []models.MetricDefinition
	err     error
}

func (s metricLookupStub) FindByID(ctx context.Context, id string) (*models.MetricDefinition, error) {
	if s.err != nil {
		return nil, s.err
	}
	if metric, ok := s.metrics[id]; ok {
		return metric, nil
	}
	return nil, sql.ErrNoRows
}

func (s metricLookupStub) List(ctx context.Context) ([]models.MetricDefinition, error) {
	return s.all, s.err
}

func TestGoalServiceCreate(t *testing.T) {
	writer := &goalWriterStub{}
	metrics := metricLookupStub{metrics: map[string]*models.MetricDefinition{
		"metric-1": {ID: "metric-1", Code: "POINTS"},
	}}
	service := NewGoalService(writer, metrics, nil, nil)

	goal, err := service.Create(context.Background(), "coach-1", CreateGoalRequest{
		Name:        "Score 50",
		MetricID:    "metric-1",
		TargetValue: 50,
		Direction:   "AT_LEAST",
	})
	require.NoError(t, err)
	assert.Equal(t, "goal-1", goal.ID)
	assert.True(t, goal.Active)
	assert.Equal(t, "coach-1", goal.CreatedBy)
	assert.Equal(t, models.DirectionAtLeast, goal.Direction)
	require.NotNil(t, goal.Metric)
	assert.Equal(t, "POINTS", goal.Metric.Code)
}

func TestGoalServiceCreateRejectsBadDirection(t *testing.T) {
	writer := &goalWriterStub{}
	service := NewGoalService(writer, metricLookupStub{}, nil, nil)

	_, err := service.Create(context.Background(), "coach-1", CreateGoalRequest{
		Name:        "Score 50",
		MetricID:    "metric-1",
		TargetValue: 50,
		Direction:   "ROUGHLY",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, writer.created)
}

func TestGoalServiceCreateRejectsUnknownMetric(t *testing.T) {
	writer := &goalWriterStub{}
	service := NewGoalService(writer, metricLookupStub{}, nil, nil)

	_, err := service.Create(context.Background(), "coach-1", CreateGoalRequest{
		Name:        "Score 50",
		MetricID:    "no-such-metric",
		TargetValue: 50,
		Direction:   "AT_LEAST",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "unknown metric", appErr.Message)
}

func TestGoalServiceGetAttachesMetric(t *testing.T) {
	writer := &goalWriterStub{goal: &models.Goal{ID: "goal-1", MetricID: "metric-1"}}
	metrics := metricLookupStub{metrics: map[string]*models.MetricDefinition{
		"metric-1": {ID: "metric-1", Code: "POINTS"},
	}}
	service := NewGoalService(writer, metrics, nil, nil)

	goal, err := service.Get(context.Background(), "goal-1")
	require.NoError(t, err)
	require.NotNil(t, goal.Metric)
	assert.Equal(t, "POINTS", goal.Metric.Code)
}

func TestGoalServiceGetNotFound(t *testing.T) {
	service := NewGoalService(&goalWriterStub{}, metricLookupStub{}, nil, nil)

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGoalServiceListDefaultsPagination(t *testing.T) {
	writer := &goalWriterStub{listed: []models.Goal{{ID: "goal-1"}}, listTotal: 42}
	service := NewGoalService(writer, metricLookupStub{}, nil, nil)

	goals, pagination, err := service.List(context.Background(), models.GoalFilter{})
	require.NoError(t, err)
	assert.Len(t, goals, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
}

func TestGoalServiceDeactivate(t *testing.T) {
	writer := &goalWriterStub{}
	service := NewGoalService(writer, metricLookupStub{}, nil, nil)

	require.NoError(t, service.Deactivate(context.Background(), "goal-1"))
	assert.Equal(t, []string{"goal-1"}, writer.deactivated)
}

func TestGoalServiceDeactivateNotFound(t *testing.T) {
	writer := &goalWriterStub{deactivateErr: sql.ErrNoRows}
	service := NewGoalService(writer, metricLookupStub{}, nil, nil)

	err := service.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGoalServiceMetricsPropagatesError(t *testing.T) {
	service := NewGoalService(&goalWriterStub{}, metricLookupStub{err: errors.New("db down")}, nil, nil)

	_, err := service.Metrics(context.Background())
	require.Error(t, err)
}
