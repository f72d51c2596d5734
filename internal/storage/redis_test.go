package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philfry41/grok-playground/pkg/chat"
	"github.com/philfry41/grok-playground/pkg/prompts"
	"github.com/philfry41/grok-playground/pkg/scene"
)

func testRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDoc() *SessionDoc {
	h := chat.NewHistory(chat.ChatMessage{Role: chat.ChatRoleSystem, Content: prompts.StorytellerPrompt})
	h.Append(chat.ChatRoleUser, "She steps into the room.")
	s := scene.NewSceneState()
	s.Location = "hotel room"
	return &SessionDoc{
		ID:      uuid.New(),
		History: h,
		Scene:   s,
		Mode:    prompts.ModeEdge,
	}
}

func TestRedisStore_SaveLoadRoundTrip(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	doc := testDoc()
	require.NoError(t, store.SaveSession(ctx, doc))

	loaded, err := store.LoadSession(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, doc.ID, loaded.ID)
	assert.Equal(t, prompts.ModeEdge, loaded.Mode)
	assert.Equal(t, "hotel room", loaded.Scene.Location)
	assert.Equal(t, 1, loaded.History.PrimingSize)
	assert.Len(t, loaded.History.Messages, 2)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestRedisStore_LoadMissingSession(t *testing.T) {
	store := testRedisStore(t)

	loaded, err := store.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded, "missing session is nil, not an error")
}

func TestRedisStore_DeleteSession(t *testing.T) {
	store := testRedisStore(t)
	ctx := context.Background()

	doc := testDoc()
	require.NoError(t, store.SaveSession(ctx, doc))
	require.NoError(t, store.DeleteSession(ctx, doc.ID))

	loaded, err := store.LoadSession(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_SaveSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	doc := testDoc()
	require.NoError(t, store.SaveSession(context.Background(), doc))

	ttl := mr.TTL(sessionKey(doc.ID))
	assert.Equal(t, SessionTTL, ttl)
}

func TestRedisStore_Ping(t *testing.T) {
	store := testRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url", nil)
	assert.Error(t, err)
}
