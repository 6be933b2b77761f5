package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// GoalRepository handles goal persistence.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	const query = `INSERT INTO goals (id, name, metric_id, target_value, direction, active, created_by, created_at, updated_at)
        VALUES (:id, :name, :metric_id, :target_value, :direction, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// FindByID fetches a goal by id regardless of active flag.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	const query = `SELECT id, name, metric_id, target_value, direction, active, created_by, created_at, updated_at
        FROM goals WHERE id = $1 LIMIT 1`
	var goal models.Goal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		return nil, err
	}
	return &goal, nil
}

// List returns goals matching the filter alongside the unpaginated count.
func (r *GoalRepository) List(ctx context.Context, filter models.GoalFilter) ([]models.Goal, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if filter.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", len(args)+1)
		args = append(args, *filter.Active)
	}
	if filter.MetricID != "" {
		where += fmt.Sprintf(" AND metric_id = $%d", len(args)+1)
		args = append(args, filter.MetricID)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(`SELECT id, name, metric_id, target_value, direction, active, created_by, created_at, updated_at
        FROM goals%s ORDER BY created_at DESC LIMIT %d OFFSET %d`, where, pageSize, (page-1)*pageSize)
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list goals: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM goals" + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count goals: %w", err)
	}
	return goals, total, nil
}

// ListActive returns all active goals ordered by id for deterministic batch runs.
func (r *GoalRepository) ListActive(ctx context.Context) ([]models.Goal, error) {
	const query = `SELECT id, name, metric_id, target_value, direction, active, created_by, created_at, updated_at
        FROM goals WHERE active = TRUE ORDER BY id ASC`
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query); err != nil {
		return nil, fmt.Errorf("list active goals: %w", err)
	}
	return goals, nil
}

// Deactivate flips the active flag off. Goals are never deleted.
func (r *GoalRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE goals SET active = FALSE, updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate goal rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
