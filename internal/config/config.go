package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything read from the environment. A .env file in the
// working directory is loaded first if present.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`

	// xAI chat completions
	XAIAPIKey       string  `env:"XAI_API_KEY"`
	XAIModel        string  `env:"XAI_MODEL" envDefault:"grok-3"`
	XAIBaseURL      string  `env:"XAI_BASE_URL" envDefault:"https://api.x.ai/v1"`
	XAIDebug        bool    `env:"XAI_DEBUG"`
	XAIRetryMinimal bool    `env:"XAI_RETRY_MINIMAL" envDefault:"true"`
	Temperature     float64 `env:"XAI_TEMPERATURE" envDefault:"1.2"`
	TopP            float64 `env:"XAI_TOP_P" envDefault:"0.95"`
	MaxTokens       int     `env:"XAI_MAX_TOKENS" envDefault:"1200"`
	HistoryLimit    int     `env:"HISTORY_LIMIT" envDefault:"20"`

	// ElevenLabs text-to-speech. Disabled when the key is empty.
	ElevenLabsAPIKey    string  `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID   string  `env:"ELEVENLABS_VOICE_ID" envDefault:"pNInz6obpgDQGcFmaJgB"`
	ElevenLabsVolume    float64 `env:"ELEVENLABS_VOLUME" envDefault:"0.5"`
	ElevenLabsMaxLength int     `env:"ELEVENLABS_MAX_LENGTH" envDefault:"5000"`

	// Persistence. Redis is used when REDIS_URL is set, otherwise JSON
	// files under SessionDir.
	RedisURL   string `env:"REDIS_URL"`
	SessionDir string `env:"SESSION_DIR" envDefault:"sessions"`

	// Edge guard tuning
	EdgeLogFile         string `env:"EDGE_LOG_FILE" envDefault:"edge_triggers.log"`
	EdgeTailSentences   int    `env:"EDGE_TAIL_SENTENCES" envDefault:"2"`
	EdgeMinRepairWords  int    `env:"EDGE_MIN_REPAIR_WORDS" envDefault:"10"`
	EdgeProximityWindow int    `env:"EDGE_PROXIMITY_WINDOW" envDefault:"120"`
}

// Load reads configuration from .env (if present) and the process
// environment. It does not validate credentials; services fail at
// construction when a key they need is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LogLevel maps the LOG_LEVEL string to a slog level. Unrecognized
// values fall back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.LogLevelRaw) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TTSEnabled reports whether text-to-speech is configured.
func (c *Config) TTSEnabled() bool {
	return c.ElevenLabsAPIKey != ""
}
