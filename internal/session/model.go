package session

import (
	"time"

	"vibeagent/internal/engine"

	"github.com/google/uuid"
)

// Session is one persisted conversation: the full engine state plus
// bookkeeping for listing and resuming.
type Session struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	State     *engine.State `json:"state"`
	Summary   string        `json:"summary,omitempty"` // Context injection for the next session
}

// SessionMeta is a lightweight representation for listing in the UI.
type SessionMeta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Summary   string    `json:"summary,omitempty"`
}

// NewSession wraps a fresh engine state in a session envelope.
func NewSession(st *engine.State) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Title:     "New Session",
		CreatedAt: now,
		UpdatedAt: now,
		State:     st,
	}
}
