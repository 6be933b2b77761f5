package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type goalWriter interface {
	Create(ctx context.Context, goal *models.Goal) error
	FindByID(ctx context.Context, id string) (*models.Goal, error)
	List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, int, error)
	Deactivate(ctx context.Context, id string) error
}

type metricLookup interface {
	FindByID(ctx context.Context, id string) (*models.MetricDefinition, error)
	List(ctx context.Context) ([]models.MetricDefinition, error)
}

// CreateGoalRequest is the payload for creating a goal.
type CreateGoalRequest struct {
	Name        string  `json:"name" validate:"required"`
	MetricID    string  `json:"metric_id" validate:"required"`
	TargetValue float64 `json:"target_value" validate:"required"`
	Direction   string  `json:"direction" validate:"required,oneof=AT_LEAST AT_MOST EXACT"`
}

// GoalService manages the coach-facing goal lifecycle. Goals are deactivated,
// never deleted, so progress history stays intact.
type GoalService struct {
	goals     goalWriter
	metrics   metricLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGoalService constructs a GoalService.
func NewGoalService(goals goalWriter, metrics metricLookup, validate *validator.Validate, logger *zap.Logger) *GoalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalService{goals: goals, metrics: metrics, validator: validate, logger: logger}
}

// Create validates and persists a new active goal owned by the caller.
func (s *GoalService) Create(ctx context.Context, identity string, req CreateGoalRequest) (*models.Goal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}
	metric, err := s.metrics.FindByID(ctx, req.MetricID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown metric")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load metric")
	}

	goal := &models.Goal{
		Name:        req.Name,
		MetricID:    metric.ID,
		TargetValue: req.TargetValue,
		Direction:   models.ComparisonDirection(req.Direction),
		Active:      true,
		CreatedBy:   identity,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create goal")
	}
	goal.Metric = metric
	return goal, nil
}

// Get returns one goal with its metric definition attached.
func (s *GoalService) Get(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	if metric, err := s.metrics.FindByID(ctx, goal.MetricID); err == nil {
		goal.Metric = metric
	}
	return goal, nil
}

// List returns goals with pagination metadata.
func (s *GoalService) List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, *models.Pagination, error) {
	goals, total, err := s.goals.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return goals, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Deactivate turns a goal off; subsequent calculations skip it.
func (s *GoalService) Deactivate(ctx context.Context, id string) error {
	if err := s.goals.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate goal")
	}
	return nil
}

// Metrics lists the available metric definitions.
func (s *GoalService) Metrics(ctx context.Context) ([]models.MetricDefinition, error) {
	metrics, err := s.metrics.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list metrics")
	}
	return metrics, nil
}
