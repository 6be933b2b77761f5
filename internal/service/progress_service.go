package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type goalReader interface {
	FindByID(ctx context.Context, id string) (*models.Goal, error)
	ListActive(ctx context.Context) ([]models.Goal, error)
}

type metricReader interface {
	FindByID(ctx context.Context, id string) (*models.MetricDefinition, error)
}

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.GameSession, error)
}

type progressStore interface {
	Insert(ctx context.Context, record *models.ProgressRecord) error
	History(ctx context.Context, goalID string, limit, offset int) ([]models.ProgressRecord, int, error)
}

type transitionChecker interface {
	CheckForStatusChanges(ctx context.Context, record models.ProgressRecord) error
}

// CalculateRequest triggers a single-goal or whole-session calculation.
type CalculateRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	GoalID    string `json:"goal_id"`
}

// ProgressResult is the outcome of evaluating one goal against one session.
type ProgressResult struct {
	GoalID      string                `json:"goal_id"`
	SessionID   string                `json:"session_id"`
	ActualValue float64               `json:"actual_value"`
	TargetValue float64               `json:"target_value"`
	Delta       float64               `json:"delta"`
	Status      models.ProgressStatus `json:"status"`
}

// CalculateResponse aggregates calculation outcomes.
type CalculateResponse struct {
	Message string           `json:"message"`
	Results []ProgressResult `json:"results"`
}

// ProgressHistory is the paginated progress history for one goal.
type ProgressHistory struct {
	Goal       *models.Goal            `json:"goal"`
	Progress   []models.ProgressRecord `json:"progress"`
	TotalCount int                     `json:"total_count"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

// ProgressConfig tunes status classification and history reads.
type ProgressConfig struct {
	// AtRiskRatio is the fraction of the target below (at-least) or above
	// (at-most) which an unmet goal on an open session is AT_RISK.
	AtRiskRatio float64
	// HistoryPageSize is the default history page size.
	HistoryPageSize int
	// CacheTTL bounds the lifetime of cached history pages.
	CacheTTL time.Duration
}

// ProgressService orchestrates goal progress calculation: authorize, load,
// evaluate, classify, persist, then check for status transitions. The four
// steps run strictly in that order for each goal.
type ProgressService struct {
	goals     goalReader
	metrics   metricReader
	sessions  sessionReader
	progress  progressStore
	evaluator MetricEvaluator
	notifier  transitionChecker
	cache     *CacheService
	stats     *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ProgressConfig
}

// NewProgressService constructs a ProgressService.
func NewProgressService(goals goalReader, metrics metricReader, sessions sessionReader, progress progressStore, evaluator MetricEvaluator, notifier transitionChecker, cache *CacheService, stats *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ProgressConfig) *ProgressService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AtRiskRatio <= 0 || cfg.AtRiskRatio >= 1 {
		cfg.AtRiskRatio = 0.75
	}
	if cfg.HistoryPageSize < 1 {
		cfg.HistoryPageSize = 20
	}
	return &ProgressService{
		goals:     goals,
		metrics:   metrics,
		sessions:  sessions,
		progress:  progress,
		evaluator: evaluator,
		notifier:  notifier,
		cache:     cache,
		stats:     stats,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Calculate runs a single-goal calculation or the full session batch. The
// caller's identity must match the session creator; that check happens
// exactly once, before anything is evaluated or written.
func (s *ProgressService) Calculate(ctx context.Context, identity string, req CalculateRequest) (*CalculateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "session_id is required")
	}

	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.CreatedBy != identity {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the session creator may calculate goal progress")
	}

	if req.GoalID != "" {
		result, err := s.calculateGoal(ctx, req.GoalID, session)
		if err != nil {
			return nil, err
		}
		return &CalculateResponse{Message: "goal progress calculated", Results: []ProgressResult{*result}}, nil
	}

	results, err := s.calculateAll(ctx, session)
	if err != nil {
		return nil, err
	}
	return &CalculateResponse{
		Message: fmt.Sprintf("calculated progress for %d goals", len(results)),
		Results: results,
	}, nil
}

// calculateAll runs the calculator for every active goal in id order. Goals
// that fail individually are skipped; siblings always proceed.
func (s *ProgressService) calculateAll(ctx context.Context, session *models.GameSession) ([]ProgressResult, error) {
	goals, err := s.goals.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active goals")
	}
	results := make([]ProgressResult, 0, len(goals))
	for _, goal := range goals {
		result, err := s.calculateGoal(ctx, goal.ID, session)
		if err != nil {
			s.logger.Warn("goal skipped during batch calculation",
				zap.String("goal_id", goal.ID),
				zap.String("session_id", session.ID),
				zap.Error(err))
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// calculateGoal evaluates one goal against the session, persists the
// snapshot and checks for a status transition. The goal is re-read so that a
// goal deactivated mid-batch is skipped rather than evaluated.
func (s *ProgressService) calculateGoal(ctx context.Context, goalID string, session *models.GameSession) (*ProgressResult, error) {
	goal, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	if !goal.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "goal is inactive")
	}

	metric, err := s.metrics.FindByID(ctx, goal.MetricID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "goal references unknown metric")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load metric")
	}

	actual, err := s.evaluator.Evaluate(ctx, metric, session.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "metric evaluation failed")
	}

	status := s.classify(goal.Direction, actual, goal.TargetValue, session.Status == models.SessionClosed)
	record := models.ProgressRecord{
		ID:           uuid.NewString(),
		GoalID:       goal.ID,
		SessionID:    session.ID,
		ActualValue:  actual,
		TargetValue:  goal.TargetValue,
		Delta:        actual - goal.TargetValue,
		Status:       status,
		CalculatedAt: time.Now().UTC(),
	}
	if err := s.progress.Insert(ctx, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist progress record")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("progress:goal:%s:*", goal.ID)); err != nil {
			s.logger.Warn("history cache invalidation failed", zap.String("goal_id", goal.ID), zap.Error(err))
		}
	}
	if s.stats != nil {
		s.stats.RecordCalculation(status)
	}
	if s.notifier != nil {
		// Transition detection reads the stored history, never the
		// in-memory result, and runs only after the save above.
		if err := s.notifier.CheckForStatusChanges(ctx, record); err != nil {
			s.logger.Warn("status transition check failed", zap.String("goal_id", goal.ID), zap.Error(err))
		}
	}

	return &ProgressResult{
		GoalID:      record.GoalID,
		SessionID:   record.SessionID,
		ActualValue: record.ActualValue,
		TargetValue: record.TargetValue,
		Delta:       record.Delta,
		Status:      record.Status,
	}, nil
}

// classify maps an actual value onto a progress status. Thresholds are
// explicit: ratio is cfg.AtRiskRatio (default 0.75).
//
//	AT_LEAST: MET when actual >= target; MISSED once the session is closed;
//	          otherwise AT_RISK when actual/target < ratio, else ON_TRACK.
//	AT_MOST:  MISSED when actual > target; MET once the session is closed;
//	          otherwise AT_RISK when actual >= target*ratio, else ON_TRACK.
//	EXACT:    MET when actual == target; MISSED once the session is closed;
//	          otherwise AT_RISK when |delta| <= target*(1-ratio), else ON_TRACK.
func (s *ProgressService) classify(direction models.ComparisonDirection, actual, target float64, sessionClosed bool) models.ProgressStatus {
	ratio := s.cfg.AtRiskRatio
	switch direction {
	case models.DirectionAtMost:
		if actual > target {
			return models.StatusMissed
		}
		if sessionClosed {
			return models.StatusMet
		}
		if actual >= target*ratio {
			return models.StatusAtRisk
		}
		return models.StatusOnTrack
	case models.DirectionExact:
		if actual == target {
			return models.StatusMet
		}
		if sessionClosed {
			return models.StatusMissed
		}
		if math.Abs(actual-target) <= target*(1-ratio) {
			return models.StatusAtRisk
		}
		return models.StatusOnTrack
	default: // AT_LEAST
		if actual >= target {
			return models.StatusMet
		}
		if sessionClosed {
			return models.StatusMissed
		}
		if target > 0 && actual/target < ratio {
			return models.StatusAtRisk
		}
		return models.StatusOnTrack
	}
}

// History returns the paginated progress history for a goal, newest first.
func (s *ProgressService) History(ctx context.Context, goalID string, limit, offset int) (*ProgressHistory, error) {
	goal, err := s.goals.FindByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "goal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}

	if limit < 1 {
		limit = s.cfg.HistoryPageSize
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := fmt.Sprintf("progress:goal:%s:%d:%d", goalID, limit, offset)
	if s.cache != nil {
		var cached ProgressHistory
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	records, total, err := s.progress.History(ctx, goalID, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress history")
	}

	history := &ProgressHistory{
		Goal:       goal,
		Progress:   records,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, history, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("history cache set failed", zap.String("goal_id", goalID), zap.Error(err))
		}
	}
	return history, nil
}
