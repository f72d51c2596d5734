package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/prompts"
	"github.com/philfry41/grok-playground/pkg/scene"
)

// SessionDoc is the persisted form of one scene session: transcript,
// tracked scene state, and the active climax mode.
type SessionDoc struct {
	ID        uuid.UUID         `json:"id"`
	History   *chat.History     `json:"history"`
	Scene     *scene.SceneState `json:"scene_state"`
	Mode      prompts.Mode      `json:"mode"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionStore defines the interface for session persistence
type SessionStore interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error

	// Close closes the store connection
	Close() error

	// SaveSession saves a session document under its ID
	SaveSession(ctx context.Context, doc *SessionDoc) error

	// LoadSession retrieves a session by ID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*SessionDoc, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
