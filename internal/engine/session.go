package engine

import (
	"github.com/google/uuid"

	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/prompts"
)

// Session is one live scene: its transcript and climax mode. The
// priming block rides at the front of the history and survives /new.
type Session struct {
	ID      uuid.UUID
	History *chat.History
	Mode    prompts.Mode
}

// NewSession creates a session with fresh priming and edging enabled.
func NewSession() *Session {
	priming := make([]chat.ChatMessage, 0, 2)
	for _, p := range prompts.Priming() {
		priming = append(priming, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: p})
	}
	return &Session{
		ID:      uuid.New(),
		History: chat.NewHistory(priming...),
		Mode:    prompts.ModeEdge,
	}
}
