package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type sessionStore interface {
	Create(ctx context.Context, session *models.GameSession) error
	FindByID(ctx context.Context, id string) (*models.GameSession, error)
	Close(ctx context.Context, id string) error
	InsertEvent(ctx context.Context, event *models.GameEvent) error
	ListEvents(ctx context.Context, sessionID string) ([]models.GameEvent, error)
}

// CreateSessionRequest is the payload for opening a game session.
type CreateSessionRequest struct {
	Name     string    `json:"name" validate:"required"`
	GameDate time.Time `json:"game_date"`
}

// RecordEventRequest is the payload for one live stat event.
type RecordEventRequest struct {
	EventType string  `json:"event_type" validate:"required"`
	PlayerID  *string `json:"player_id"`
	Value     float64 `json:"value"`
}

// SessionService manages the game session lifecycle and the append-only live
// event feed.
type SessionService struct {
	sessions  sessionStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions sessionStore, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, validator: validate, logger: logger}
}

// Create opens a new session owned by the caller.
func (s *SessionService) Create(ctx context.Context, identity string, req CreateSessionRequest) (*models.GameSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if req.GameDate.IsZero() {
		req.GameDate = time.Now().UTC()
	}
	session := &models.GameSession{
		Name:      req.Name,
		GameDate:  req.GameDate,
		Status:    models.SessionOpen,
		CreatedBy: identity,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.GameSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Close transitions the session to CLOSED. Only the creator may close it.
func (s *SessionService) Close(ctx context.Context, identity, id string) (*models.GameSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.CreatedBy != identity {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the session creator may close it")
	}
	if session.Status == models.SessionClosed {
		return session, nil
	}
	if err := s.sessions.Close(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close session")
	}
	session.Status = models.SessionClosed
	return session, nil
}

// RecordEvent appends one live stat event. Events may only be recorded on
// open sessions by their creator.
func (s *SessionService) RecordEvent(ctx context.Context, identity, sessionID string, req RecordEventRequest) (*models.GameEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CreatedBy != identity {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the session creator may record events")
	}
	if session.Status != models.SessionOpen {
		return nil, appErrors.ErrSessionClosed
	}

	event := &models.GameEvent{
		SessionID: session.ID,
		PlayerID:  req.PlayerID,
		EventType: req.EventType,
		Value:     req.Value,
	}
	if err := s.sessions.InsertEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record event")
	}
	return event, nil
}

// ListEvents returns the session's full event feed in recording order.
func (s *SessionService) ListEvents(ctx context.Context, sessionID string) ([]models.GameEvent, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	events, err := s.sessions.ListEvents(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}
