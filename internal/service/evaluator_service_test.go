package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
)

type eventsReaderStub struct {
	events    []models.GameEvent
	err       error
	lastTypes []string
}

func (s *eventsReaderStub) ListEventsByTypes(ctx context.Context, sessionID string, eventTypes []string) ([]models.GameEvent, error) {
	s.lastTypes = eventTypes
	return s.events, s.err
}

func makeEvents(types ...string) []models.GameEvent {
	events := make([]models.GameEvent, 0, len(types))
	for _, eventType := range types {
		events = append(events, models.GameEvent{EventType: eventType, Value: 1})
	}
	return events
}

func TestEventAggregatorCount(t *testing.T) {
	reader := &eventsReaderStub{events: makeEvents("REBOUND", "REBOUND", "REBOUND")}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "REBOUNDS", Computation: models.ComputationCount, EventTypes: pq.StringArray{"REBOUND"}}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, actual)
	assert.Equal(t, []string{"REBOUND"}, reader.lastTypes)
}

func TestEventAggregatorSum(t *testing.T) {
	reader := &eventsReaderStub{events: []models.GameEvent{
		{EventType: "SCORE", Value: 2},
		{EventType: "SCORE", Value: 3},
		{EventType: "SCORE", Value: 2},
	}}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "POINTS", Computation: models.ComputationSum, EventTypes: pq.StringArray{"SCORE"}}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 7.0, actual)
}

func TestEventAggregatorAverage(t *testing.T) {
	reader := &eventsReaderStub{events: []models.GameEvent{
		{EventType: "SCORE", Value: 2},
		{EventType: "SCORE", Value: 4},
	}}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "AVG_POINTS", Computation: models.ComputationAverage, EventTypes: pq.StringArray{"SCORE"}}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, actual)
}

func TestEventAggregatorAverageEmptySessionIsZero(t *testing.T) {
	reader := &eventsReaderStub{}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "AVG_POINTS", Computation: models.ComputationAverage, EventTypes: pq.StringArray{"SCORE"}}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Zero(t, actual)
}

func TestEventAggregatorPercent(t *testing.T) {
	reader := &eventsReaderStub{events: makeEvents("FT_MADE", "FT_MADE", "FT_MADE", "FT_MISS")}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{
		Code:              "FT_PCT",
		Computation:       models.ComputationPercent,
		EventTypes:        pq.StringArray{"FT_MADE", "FT_MISS"},
		SuccessEventTypes: pq.StringArray{"FT_MADE"},
	}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, actual)
}

func TestEventAggregatorPercentNoAttemptsIsZero(t *testing.T) {
	reader := &eventsReaderStub{}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{
		Code:              "FT_PCT",
		Computation:       models.ComputationPercent,
		EventTypes:        pq.StringArray{"FT_MADE", "FT_MISS"},
		SuccessEventTypes: pq.StringArray{"FT_MADE"},
	}

	actual, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.NoError(t, err)
	assert.Zero(t, actual)
}

func TestEventAggregatorUnknownComputation(t *testing.T) {
	reader := &eventsReaderStub{}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "BROKEN", Computation: "MEDIAN"}

	_, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported computation")
}

func TestEventAggregatorPropagatesReadError(t *testing.T) {
	reader := &eventsReaderStub{err: errors.New("db down")}
	aggregator := NewEventAggregator(reader, nil)
	metric := &models.MetricDefinition{Code: "POINTS", Computation: models.ComputationSum}

	_, err := aggregator.Evaluate(context.Background(), metric, "session-1")
	require.Error(t, err)
}
