package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// SessionRepository handles game session and game event persistence.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new game session in the OPEN state.
func (r *SessionRepository) Create(ctx context.Context, session *models.GameSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionOpen
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO game_sessions (id, name, game_date, status, created_by, created_at, updated_at)
        VALUES (:id, :name, :game_date, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID fetches a game session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.GameSession, error) {
	const query = `SELECT id, name, game_date, status, created_by, created_at, updated_at
        FROM game_sessions WHERE id = $1 LIMIT 1`
	var session models.GameSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Close transitions a session to CLOSED.
func (r *SessionRepository) Close(ctx context.Context, id string) error {
	const query = `UPDATE game_sessions SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, models.SessionClosed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertEvent appends one game event to the session's live feed.
func (r *SessionRepository) InsertEvent(ctx context.Context, event *models.GameEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	const query = `INSERT INTO game_events (id, session_id, player_id, event_type, value, recorded_at)
        VALUES (:id, :session_id, :player_id, :event_type, :value, :recorded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns all events for a session ordered by recording time.
func (r *SessionRepository) ListEvents(ctx context.Context, sessionID string) ([]models.GameEvent, error) {
	const query = `SELECT id, session_id, player_id, event_type, value, recorded_at
        FROM game_events WHERE session_id = $1 ORDER BY recorded_at ASC`
	var events []models.GameEvent
	if err := r.db.SelectContext(ctx, &events, query, sessionID); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListEventsByTypes returns a session's events restricted to the given event
// types, ordered by recording time.
func (r *SessionRepository) ListEventsByTypes(ctx context.Context, sessionID string, eventTypes []string) ([]models.GameEvent, error) {
	if len(eventTypes) == 0 {
		return []models.GameEvent{}, nil
	}
	placeholders := make([]string, len(eventTypes))
	args := make([]interface{}, len(eventTypes)+1)
	args[0] = sessionID
	for i, eventType := range eventTypes {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args[i+1] = eventType
	}
	query := fmt.Sprintf(`SELECT id, session_id, player_id, event_type, value, recorded_at
        FROM game_events WHERE session_id = $1 AND event_type IN (%s) ORDER BY recorded_at ASC`, strings.Join(placeholders, ","))
	var events []models.GameEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events by type: %w", err)
	}
	return events, nil
}
