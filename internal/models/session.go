package models

import "time"

// SessionStatus is the lifecycle state of a game session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// GameSession is a live game-tracking session producing events used to
// evaluate goals.
type GameSession struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	GameDate  time.Time     `db:"game_date" json:"game_date"`
	Status    SessionStatus `db:"status" json:"status"`
	CreatedBy string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// GameEvent is one row of the append-only live stat feed for a session.
type GameEvent struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	PlayerID   *string   `db:"player_id" json:"player_id,omitempty"`
	EventType  string    `db:"event_type" json:"event_type"`
	Value      float64   `db:"value" json:"value"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
