package chat

import "fmt"

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant" // Storyteller
	ChatRoleSystem = "system"    // Priming, continuity directives
)

// ChatMessage is a single message in a conversation, in the shape
// the chat-completions API expects.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the storyteller's reply for one turn.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
}

// History is an ordered conversation transcript. The first PrimingSize
// messages are the priming block and survive a scene reset.
type History struct {
	Messages    []ChatMessage `json:"messages"`
	PrimingSize int           `json:"priming_size"`
}

// NewHistory creates a transcript seeded with priming messages.
func NewHistory(priming ...ChatMessage) *History {
	msgs := make([]ChatMessage, len(priming))
	copy(msgs, priming)
	return &History{
		Messages:    msgs,
		PrimingSize: len(priming),
	}
}

// Append adds a message to the transcript.
func (h *History) Append(role, content string) {
	h.Messages = append(h.Messages, ChatMessage{Role: role, Content: content})
}

// Priming returns the priming block.
func (h *History) Priming() []ChatMessage {
	return h.Messages[:h.PrimingSize]
}

// PrependPriming inserts a message at the front of the priming block and
// grows the block, so the message survives scene resets.
func (h *History) PrependPriming(msg ChatMessage) {
	h.Messages = append([]ChatMessage{msg}, h.Messages...)
	h.PrimingSize++
}

// Recent returns the last n messages after the priming block.
// Used to build extraction context.
func (h *History) Recent(n int) []ChatMessage {
	conv := h.Messages[h.PrimingSize:]
	if len(conv) <= n {
		return conv
	}
	return conv[len(conv)-n:]
}

// Window returns the priming block plus the last limit conversation messages.
func (h *History) Window(limit int) []ChatMessage {
	priming := h.Messages[:h.PrimingSize]
	conv := h.Messages[h.PrimingSize:]
	if len(conv) > limit {
		conv = conv[len(conv)-limit:]
	}
	out := make([]ChatMessage, 0, len(priming)+len(conv))
	out = append(out, priming...)
	out = append(out, conv...)
	return out
}

// Reset drops everything after the priming block. Priming is kept.
func (h *History) Reset() {
	h.Messages = h.Messages[:h.PrimingSize]
}

// LastAgentMessage returns the most recent assistant message, or "".
func (h *History) LastAgentMessage() string {
	for i := len(h.Messages) - 1; i >= h.PrimingSize; i-- {
		if h.Messages[i].Role == ChatRoleAgent {
			return h.Messages[i].Content
		}
	}
	return ""
}

func (m ChatMessage) Validate() error {
	if m.Role != ChatRoleUser && m.Role != ChatRoleAgent && m.Role != ChatRoleSystem {
		return fmt.Errorf("invalid role %q", m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("content cannot be empty")
	}
	return nil
}
