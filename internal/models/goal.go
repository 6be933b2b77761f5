package models

import (
	"time"

	"github.com/lib/pq"
)

// ComparisonDirection defines how a goal's actual value is compared to its target.
type ComparisonDirection string

const (
	// DirectionAtLeast means the actual value must reach or exceed the target.
	DirectionAtLeast ComparisonDirection = "AT_LEAST"
	// DirectionAtMost means the actual value must stay at or below the target.
	DirectionAtMost ComparisonDirection = "AT_MOST"
	// DirectionExact means the actual value must equal the target.
	DirectionExact ComparisonDirection = "EXACT"
)

// MetricComputation defines the aggregation applied over scoped game events.
type MetricComputation string

const (
	// ComputationCount counts events matching the metric's event types.
	ComputationCount MetricComputation = "COUNT"
	// ComputationSum sums the value of matching events.
	ComputationSum MetricComputation = "SUM"
	// ComputationAverage averages the value of matching events.
	ComputationAverage MetricComputation = "AVERAGE"
	// ComputationPercent computes 100 * success events / all matching events.
	ComputationPercent MetricComputation = "PERCENT"
)

// ProgressStatus classifies a goal's standing at one calculation.
type ProgressStatus string

const (
	StatusOnTrack ProgressStatus = "ON_TRACK"
	StatusAtRisk  ProgressStatus = "AT_RISK"
	StatusMet     ProgressStatus = "MET"
	StatusMissed  ProgressStatus = "MISSED"
)

// MetricDefinition is immutable reference data describing how a metric is
// derived from game events.
type MetricDefinition struct {
	ID                string            `db:"id" json:"id"`
	Code              string            `db:"code" json:"code"`
	Name              string            `db:"name" json:"name"`
	Category          string            `db:"category" json:"category"`
	Computation       MetricComputation `db:"computation" json:"computation"`
	EventTypes        pq.StringArray    `db:"event_types" json:"event_types"`
	SuccessEventTypes pq.StringArray    `db:"success_event_types" json:"success_event_types,omitempty"`
	Unit              string            `db:"unit" json:"unit"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
}

// Goal is a target performance threshold for a metric. Goals are deactivated
// rather than deleted.
type Goal struct {
	ID          string              `db:"id" json:"id"`
	Name        string              `db:"name" json:"name"`
	MetricID    string              `db:"metric_id" json:"metric_id"`
	TargetValue float64             `db:"target_value" json:"target_value"`
	Direction   ComparisonDirection `db:"direction" json:"direction"`
	Active      bool                `db:"active" json:"active"`
	CreatedBy   string              `db:"created_by" json:"created_by"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`

	Metric *MetricDefinition `json:"metric,omitempty"`
}

// GoalFilter captures filtering criteria for listing goals.
type GoalFilter struct {
	Active   *bool
	MetricID string
	Page     int
	PageSize int
}

// ProgressRecord is an immutable snapshot of a goal's evaluation at one point
// in time. Records are append-only; history is never mutated.
type ProgressRecord struct {
	ID           string         `db:"id" json:"id"`
	GoalID       string         `db:"goal_id" json:"goal_id"`
	SessionID    string         `db:"session_id" json:"session_id"`
	ActualValue  float64        `db:"actual_value" json:"actual_value"`
	TargetValue  float64        `db:"target_value" json:"target_value"`
	Delta        float64        `db:"delta" json:"delta"`
	Status       ProgressStatus `db:"status" json:"status"`
	CalculatedAt time.Time      `db:"calculated_at" json:"calculated_at"`
}

// StatusTransition is the payload published when consecutive progress
// records for a goal carry different statuses.
type StatusTransition struct {
	GoalID     string         `json:"goal_id"`
	SessionID  string         `json:"session_id"`
	FromStatus ProgressStatus `json:"from_status"`
	ToStatus   ProgressStatus `json:"to_status"`
	OccurredAt time.Time      `json:"occurred_at"`
}
