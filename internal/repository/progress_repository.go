package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// ProgressRepository stores append-only goal progress snapshots. A unique
// index on (goal_id, session_id, calculated_at) guards against duplicate
// timestamps at the persistence resolution.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Insert appends one progress record. Each call produces a distinct row;
// existing history is never mutated.
func (r *ProgressRepository) Insert(ctx context.Context, record *models.ProgressRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CalculatedAt.IsZero() {
		record.CalculatedAt = time.Now().UTC()
	}
	record.CalculatedAt = record.CalculatedAt.Truncate(time.Microsecond)
	const query = `INSERT INTO goal_progress (id, goal_id, session_id, actual_value, target_value, delta, status, calculated_at)
        VALUES (:id, :goal_id, :session_id, :actual_value, :target_value, :delta, :status, :calculated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert progress record: %w", err)
	}
	return nil
}

// History returns progress records for a goal ordered by calculation time
// descending, alongside the unpaginated total count.
func (r *ProgressRepository) History(ctx context.Context, goalID string, limit, offset int) ([]models.ProgressRecord, int, error) {
	if limit < 1 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, goal_id, session_id, actual_value, target_value, delta, status, calculated_at
        FROM goal_progress WHERE goal_id = $1 ORDER BY calculated_at DESC LIMIT %d OFFSET %d`, limit, offset)
	var records []models.ProgressRecord
	if err := r.db.SelectContext(ctx, &records, query, goalID); err != nil {
		return nil, 0, fmt.Errorf("list progress history: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM goal_progress WHERE goal_id = $1", goalID); err != nil {
		return nil, 0, fmt.Errorf("count progress history: %w", err)
	}
	return records, total, nil
}

// PreviousStatus returns the status of the record immediately preceding the
// given calculation time for a goal, or nil when no earlier record exists.
func (r *ProgressRepository) PreviousStatus(ctx context.Context, goalID string, before time.Time, excludeID string) (*models.ProgressStatus, error) {
	const query = `SELECT status FROM goal_progress
        WHERE goal_id = $1 AND calculated_at <= $2 AND id != $3
        ORDER BY calculated_at DESC LIMIT 1`
	var status models.ProgressStatus
	if err := r.db.GetContext(ctx, &status, query, goalID, before, excludeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("previous status: %w", err)
	}
	return &status, nil
}
