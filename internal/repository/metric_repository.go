package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// MetricRepository reads metric definition reference data.
type MetricRepository struct {
	db *sqlx.DB
}

// NewMetricRepository creates a new metric repository.
func NewMetricRepository(db *sqlx.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

// FindByID fetches a metric definition by id.
func (r *MetricRepository) FindByID(ctx context.Context, id string) (*models.MetricDefinition, error) {
	const query = `SELECT id, code, name, category, computation, event_types, success_event_types, unit, created_at
        FROM metric_definitions WHERE id = $1 LIMIT 1`
	var metric models.MetricDefinition
	if err := r.db.GetContext(ctx, &metric, query, id); err != nil {
		return nil, err
	}
	return &metric, nil
}

// FindByCode fetches a metric definition by its short code.
func (r *MetricRepository) FindByCode(ctx context.Context, code string) (*models.MetricDefinition, error) {
	const query = `SELECT id, code, name, category, computation, event_types, success_event_types, unit, created_at
        FROM metric_definitions WHERE code = $1 LIMIT 1`
	var metric models.MetricDefinition
	if err := r.db.GetContext(ctx, &metric, query, code); err != nil {
		return nil, err
	}
	return &metric, nil
}

// List returns all metric definitions ordered by category and code.
func (r *MetricRepository) List(ctx context.Context) ([]models.MetricDefinition, error) {
	const query = `SELECT id, code, name, category, computation, event_types, success_event_types, unit, created_at
        FROM metric_definitions ORDER BY category, code`
	var metrics []models.MetricDefinition
	if err := r.db.SelectContext(ctx, &metrics, query); err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	return metrics, nil
}
