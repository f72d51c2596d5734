package prompts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philfry41/grok-playground/pkg/chat"
)

func primedHistory() *chat.History {
	h := chat.NewHistory(
		chat.ChatMessage{Role: chat.ChatRoleSystem, Content: LexicalContractPrompt},
		chat.ChatMessage{Role: chat.ChatRoleSystem, Content: StorytellerPrompt},
	)
	return h
}

func TestBuild_RequiresHistory(t *testing.T) {
	_, err := New().WithUserMessage("hello", chat.ChatRoleUser).Build()
	assert.Error(t, err)
}

func TestBuild_MessageOrder(t *testing.T) {
	h := primedHistory()
	h.Append(chat.ChatRoleUser, "She leans in closer.")
	h.Append(chat.ChatRoleAgent, "Stephanie smiles and reaches for his belt.")

	messages, err := New().
		WithHistory(h).
		WithContinuity("CURRENT SCENE STATE: testing").
		WithUserMessage("Keep going.", chat.ChatRoleUser).
		Build()
	require.NoError(t, err)
	require.Len(t, messages, 5)

	assert.Equal(t, LexicalContractPrompt, messages[0].Content)
	assert.Equal(t, StorytellerPrompt, messages[1].Content)
	assert.Equal(t, chat.ChatRoleSystem, messages[2].Role, "continuity rides between priming and conversation")
	assert.Equal(t, "CURRENT SCENE STATE: testing", messages[2].Content)
	assert.Equal(t, "She leans in closer.", messages[3].Content)
	assert.Equal(t, "Keep going.", messages[4].Content)
}

func TestBuild_NoContinuityNoUserMessage(t *testing.T) {
	h := primedHistory()
	h.Append(chat.ChatRoleUser, "hello")

	messages, err := New().WithHistory(h).Build()
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "hello", messages[2].Content)
}

func TestBuild_WindowsConversationKeepsPriming(t *testing.T) {
	h := primedHistory()
	for i := 0; i < 30; i++ {
		h.Append(chat.ChatRoleUser, fmt.Sprintf("turn %d", i))
	}

	messages, err := New().WithHistory(h).WithHistoryLimit(4).Build()
	require.NoError(t, err)
	require.Len(t, messages, 6)
	assert.Equal(t, LexicalContractPrompt, messages[0].Content, "priming is never windowed out")
	assert.Equal(t, "turn 26", messages[2].Content)
	assert.Equal(t, "turn 29", messages[5].Content)
}

func TestBuild_DefaultUserRole(t *testing.T) {
	messages, err := New().WithHistory(primedHistory()).WithUserMessage("hi", "").Build()
	require.NoError(t, err)
	assert.Equal(t, chat.ChatRoleUser, messages[len(messages)-1].Role)
}

func TestBuildMessages(t *testing.T) {
	h := primedHistory()
	messages, err := BuildMessages(h, "", "go on", 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "go on", messages[2].Content)
}
