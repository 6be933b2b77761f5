package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
)

// MetricEvaluator computes the actual numeric value for a metric over one
// session's scoped event set.
type MetricEvaluator interface {
	Evaluate(ctx context.Context, metric *models.MetricDefinition, sessionID string) (float64, error)
}

type sessionEventsReader interface {
	ListEventsByTypes(ctx context.Context, sessionID string, eventTypes []string) ([]models.GameEvent, error)
}

// EventAggregator is the default MetricEvaluator. It loads the session's
// events restricted to the metric's event types and applies the metric's
// computation:
//
//	COUNT   - number of matching events
//	SUM     - sum of event values
//	AVERAGE - mean event value, 0 when no events
//	PERCENT - 100 * success-type events / all matching events, 0 when no
//	          attempts (shot-percentage style metrics)
type EventAggregator struct {
	events sessionEventsReader
	logger *zap.Logger
}

// NewEventAggregator constructs the default metric evaluator.
func NewEventAggregator(events sessionEventsReader, logger *zap.Logger) *EventAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventAggregator{events: events, logger: logger}
}

// Evaluate computes the metric's actual value for the session.
func (a *EventAggregator) Evaluate(ctx context.Context, metric *models.MetricDefinition, sessionID string) (float64, error) {
	events, err := a.events.ListEventsByTypes(ctx, sessionID, metric.EventTypes)
	if err != nil {
		return 0, fmt.Errorf("load events for metric %s: %w", metric.Code, err)
	}

	switch metric.Computation {
	case models.ComputationCount:
		return float64(len(events)), nil
	case models.ComputationSum:
		sum := 0.0
		for _, event := range events {
			sum += event.Value
		}
		return sum, nil
	case models.ComputationAverage:
		if len(events) == 0 {
			return 0, nil
		}
		sum := 0.0
		for _, event := range events {
			sum += event.Value
		}
		return sum / float64(len(events)), nil
	case models.ComputationPercent:
		if len(events) == 0 {
			return 0, nil
		}
		successTypes := make(map[string]bool, len(metric.SuccessEventTypes))
		for _, eventType := range metric.SuccessEventTypes {
			successTypes[eventType] = true
		}
		success := 0
		for _, event := range events {
			if successTypes[event.EventType] {
				success++
			}
		}
		return 100 * float64(success) / float64(len(events)), nil
	default:
		return 0, fmt.Errorf("unsupported computation %q for metric %s", metric.Computation, metric.Code)
	}
}
