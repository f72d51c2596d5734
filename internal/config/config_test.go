package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "grok-3", cfg.XAIModel)
	assert.Equal(t, "https://api.x.ai/v1", cfg.XAIBaseURL)
	assert.Equal(t, 1200, cfg.MaxTokens)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, "sessions", cfg.SessionDir)
	assert.Equal(t, "edge_triggers.log", cfg.EdgeLogFile)
	assert.Equal(t, 2, cfg.EdgeTailSentences)
	assert.True(t, cfg.XAIRetryMinimal)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("XAI_MODEL", "grok-4")
	t.Setenv("XAI_MAX_TOKENS", "800")
	t.Setenv("XAI_RETRY_MINIMAL", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ELEVENLABS_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "grok-4", cfg.XAIModel)
	assert.Equal(t, 800, cfg.MaxTokens)
	assert.False(t, cfg.XAIRetryMinimal)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.True(t, cfg.TTSEnabled())
}

func TestLogLevel_Fallback(t *testing.T) {
	cfg := &Config{LogLevelRaw: "verbose"}
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())

	cfg.LogLevelRaw = "warning"
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel())
}

func TestTTSEnabled(t *testing.T) {
	assert.False(t, (&Config{}).TTSEnabled())
	assert.True(t, (&Config{ElevenLabsAPIKey: "k"}).TTSEnabled())
}
