package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primedHistory() *History {
	return NewHistory(
		ChatMessage{Role: ChatRoleSystem, Content: "priming one"},
		ChatMessage{Role: ChatRoleSystem, Content: "priming two"},
	)
}

func TestHistory_ResetKeepsPriming(t *testing.T) {
	h := primedHistory()
	h.Append(ChatRoleUser, "hello")
	h.Append(ChatRoleAgent, "well met")

	h.Reset()

	require.Len(t, h.Messages, 2)
	assert.Equal(t, ChatRoleSystem, h.Messages[0].Role)
	assert.Equal(t, "priming two", h.Messages[1].Content)
}

func TestHistory_Recent(t *testing.T) {
	h := primedHistory()
	for i := 0; i < 6; i++ {
		h.Append(ChatRoleUser, "u")
		h.Append(ChatRoleAgent, "a")
	}

	recent := h.Recent(4)
	require.Len(t, recent, 4)
	for _, m := range recent {
		assert.NotEqual(t, ChatRoleSystem, m.Role, "priming must not leak into extraction context")
	}
}

func TestHistory_RecentShorterThanWindow(t *testing.T) {
	h := primedHistory()
	h.Append(ChatRoleUser, "only one")

	recent := h.Recent(4)
	require.Len(t, recent, 1)
	assert.Equal(t, "only one", recent[0].Content)
}

func TestHistory_WindowIncludesPriming(t *testing.T) {
	h := primedHistory()
	for i := 0; i < 30; i++ {
		h.Append(ChatRoleUser, "turn")
	}

	window := h.Window(10)
	require.Len(t, window, 12)
	assert.Equal(t, ChatRoleSystem, window[0].Role)
	assert.Equal(t, ChatRoleSystem, window[1].Role)
	assert.Equal(t, ChatRoleUser, window[2].Role)
}

func TestHistory_LastAgentMessage(t *testing.T) {
	h := primedHistory()
	assert.Empty(t, h.LastAgentMessage())

	h.Append(ChatRoleUser, "go on")
	h.Append(ChatRoleAgent, "first reply")
	h.Append(ChatRoleUser, "more")
	h.Append(ChatRoleAgent, "second reply")
	h.Append(ChatRoleUser, "pending")

	assert.Equal(t, "second reply", h.LastAgentMessage())
}

func TestChatMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     ChatMessage
		wantErr bool
	}{
		{name: "valid user message", msg: ChatMessage{Role: ChatRoleUser, Content: "hi"}},
		{name: "valid system message", msg: ChatMessage{Role: ChatRoleSystem, Content: "rule"}},
		{name: "empty content", msg: ChatMessage{Role: ChatRoleUser}, wantErr: true},
		{name: "bad role", msg: ChatMessage{Role: "narrator", Content: "hi"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
