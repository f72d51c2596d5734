package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsModelID = "eleven_monolingual_v1"

	// DefaultVoiceID is the "Adam" voice.
	DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"
)

// Markdown that reads badly aloud.
var (
	boldRegex    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRegex  = regexp.MustCompile(`\*(.*?)\*`)
	codeRegex    = regexp.MustCompile("`(.*?)`")
	headerRegex  = regexp.MustCompile(`#{1,6}\s+`)
	linkRegex    = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	newlineRegex = regexp.MustCompile(`\n+`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// Voice is one entry from the voices listing.
type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

// ElevenLabsService converts storyteller output to speech via the
// ElevenLabs API.
type ElevenLabsService struct {
	apiKey     string
	voiceID    string
	maxLength  int
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewElevenLabsService creates a TTS service. The API key is required.
// maxLength caps the synthesized text in characters; 0 means no limit.
func NewElevenLabsService(apiKey, voiceID string, maxLength int, logger *slog.Logger) (*ElevenLabsService, error) {
	if apiKey == "" {
		return nil, &ConfigError{Service: "elevenlabs", Missing: "ELEVENLABS_API_KEY"}
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ElevenLabsService{
		apiKey:    apiKey,
		voiceID:   voiceID,
		maxLength: maxLength,
		baseURL:   elevenLabsBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}, nil
}

// VoiceID returns the active voice.
func (s *ElevenLabsService) VoiceID() string { return s.voiceID }

// SetVoice changes the active voice.
func (s *ElevenLabsService) SetVoice(voiceID string) { s.voiceID = voiceID }

// Synthesize converts text to MP3 audio. Markdown is stripped and the
// text capped before synthesis.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	clean := cleanForSpeech(text, s.maxLength)
	if clean == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	payload := map[string]string{
		"text":     clean,
		"model_id": elevenLabsModelID,
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Service:    "elevenlabs",
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}

	return body, nil
}

// SaveSpeech synthesizes text and writes it to a timestamped MP3 under
// dir, creating the directory if needed. Returns the file path.
func (s *ElevenLabsService) SaveSpeech(ctx context.Context, text, dir string) (string, error) {
	audio, err := s.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	filename := fmt.Sprintf("grok_response_%s.mp3", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	s.logger.Debug("audio saved", "path", path, "bytes", len(audio))
	return path, nil
}

// Voices lists the voices available to the account.
func (s *ElevenLabsService) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Service:    "elevenlabs",
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}

	var listing struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return listing.Voices, nil
}

// cleanForSpeech strips markdown and collapses whitespace so the audio
// doesn't read formatting characters aloud.
func cleanForSpeech(text string, maxLength int) string {
	text = boldRegex.ReplaceAllString(text, "$1")
	text = italicRegex.ReplaceAllString(text, "$1")
	text = codeRegex.ReplaceAllString(text, "$1")
	text = headerRegex.ReplaceAllString(text, "")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = newlineRegex.ReplaceAllString(text, " ")
	text = spaceRegex.ReplaceAllString(text, " ")

	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength] + "..."
	}
	return strings.TrimSpace(text)
}
