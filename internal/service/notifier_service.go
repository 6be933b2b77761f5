package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/pkg/jobs"
)

// TransitionPublisher delivers a status transition to its destination system.
type TransitionPublisher interface {
	Publish(ctx context.Context, transition models.StatusTransition) error
}

type previousStatusReader interface {
	PreviousStatus(ctx context.Context, goalID string, before time.Time, excludeID string) (*models.ProgressStatus, error)
}

// NotifierService detects status transitions between consecutive persisted
// progress records and publishes them. Detection is synchronous and always
// reads the previously stored record; delivery is dispatched asynchronously
// on the jobs queue when one is attached.
type NotifierService struct {
	store     previousStatusReader
	publisher TransitionPublisher
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotifierService constructs a notifier service.
func NewNotifierService(store previousStatusReader, publisher TransitionPublisher, metrics *MetricsService, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifierService{store: store, publisher: publisher, metrics: metrics, logger: logger}
}

// AttachQueue routes publishes through the given queue. HandleJob must be the
// queue's handler.
func (s *NotifierService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// CheckForStatusChanges compares the just-persisted record's status with the
// immediately preceding record for the same goal and publishes a transition
// only when they differ. The first-ever record for a goal fires nothing.
func (s *NotifierService) CheckForStatusChanges(ctx context.Context, record models.ProgressRecord) error {
	previous, err := s.store.PreviousStatus(ctx, record.GoalID, record.CalculatedAt, record.ID)
	if err != nil {
		s.logger.Warn("previous status lookup failed",
			zap.String("goal_id", record.GoalID), zap.Error(err))
		return err
	}
	if previous == nil || *previous == record.Status {
		return nil
	}

	transition := models.StatusTransition{
		GoalID:     record.GoalID,
		SessionID:  record.SessionID,
		FromStatus: *previous,
		ToStatus:   record.Status,
		OccurredAt: record.CalculatedAt,
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(transition.ToStatus)
	}

	if s.queue != nil {
		if s.queue.Enqueue(jobs.Job{ID: record.ID, Type: "status-transition", Payload: transition}) {
			return nil
		}
		s.logger.Warn("transition enqueue failed, publishing inline", zap.String("goal_id", record.GoalID))
	}
	if err := s.publisher.Publish(ctx, transition); err != nil {
		s.logger.Error("transition publish failed",
			zap.String("goal_id", record.GoalID), zap.Error(err))
		return err
	}
	return nil
}

// HandleJob is the jobs.Queue handler delivering queued transitions.
func (s *NotifierService) HandleJob(ctx context.Context, job jobs.Job) error {
	transition, ok := job.Payload.(models.StatusTransition)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	return s.publisher.Publish(ctx, transition)
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// RedisTransitionPublisher publishes transitions as JSON to a Redis channel.
type RedisTransitionPublisher struct {
	redis   redisPublisher
	channel string
}

// NewRedisTransitionPublisher constructs a Redis pub/sub publisher.
func NewRedisTransitionPublisher(redis redisPublisher, channel string) *RedisTransitionPublisher {
	return &RedisTransitionPublisher{redis: redis, channel: channel}
}

// Publish implements TransitionPublisher.
func (p *RedisTransitionPublisher) Publish(ctx context.Context, transition models.StatusTransition) error {
	return p.redis.Publish(ctx, p.channel, transition)
}

// LogTransitionPublisher writes transitions to the application log. Used when
// no external destination is configured.
type LogTransitionPublisher struct {
	logger *zap.Logger
}

// NewLogTransitionPublisher constructs a log publisher.
func NewLogTransitionPublisher(logger *zap.Logger) *LogTransitionPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransitionPublisher{logger: logger}
}

// Publish implements TransitionPublisher.
func (p *LogTransitionPublisher) Publish(_ context.Context, transition models.StatusTransition) error {
	p.logger.Info("goal status transition",
		zap.String("goal_id", transition.GoalID),
		zap.String("session_id", transition.SessionID),
		zap.String("from", string(transition.FromStatus)),
		zap.String("to", string(transition.ToStatus)),
		zap.Time("occurred_at", transition.OccurredAt))
	return nil
}
