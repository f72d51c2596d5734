package prompts

import (
	"fmt"

	"github.com/philfry41/grok-playground/pkg/chat"
)

// DefaultHistoryLimit is how many conversation messages (post-priming)
// a generation call sees.
const DefaultHistoryLimit = 20

// Builder constructs the message array for a generation call using a
// fluent interface. It keeps prompt assembly separate from session state.
type Builder struct {
	history      *chat.History
	continuity   string
	userMessage  string
	userRole     string
	historyLimit int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{historyLimit: DefaultHistoryLimit}
}

// WithHistory sets the conversation transcript (priming plus turns).
func (b *Builder) WithHistory(h *chat.History) *Builder {
	b.history = h
	return b
}

// WithContinuity sets the rendered scene-state directive. Empty means no
// continuity injection this turn.
func (b *Builder) WithContinuity(directive string) *Builder {
	b.continuity = directive
	return b
}

// WithUserMessage sets the current user message and role.
func (b *Builder) WithUserMessage(message string, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// WithHistoryLimit sets the conversation window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build assembles the final message array: priming block, continuity
// directive, windowed conversation, then the current user message.
// The continuity directive sits between priming and conversation so the
// model reads it as standing instructions rather than dialogue.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.history == nil {
		return nil, fmt.Errorf("history is required")
	}

	priming := b.history.Priming()
	conv := b.history.Recent(b.historyLimit)

	messages := make([]chat.ChatMessage, 0, len(priming)+len(conv)+2)
	messages = append(messages, priming...)

	if b.continuity != "" {
		messages = append(messages, chat.ChatMessage{
			Role:    chat.ChatRoleSystem,
			Content: b.continuity,
		})
	}

	messages = append(messages, conv...)

	if b.userMessage != "" {
		role := b.userRole
		if role == "" {
			role = chat.ChatRoleUser
		}
		messages = append(messages, chat.ChatMessage{Role: role, Content: b.userMessage})
	}

	return messages, nil
}

// BuildMessages is a convenience wrapper for the common case.
func BuildMessages(h *chat.History, continuity, message string, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithHistory(h).
		WithContinuity(continuity).
		WithUserMessage(message, chat.ChatRoleUser).
		WithHistoryLimit(historyLimit).
		Build()
}
