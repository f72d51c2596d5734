package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/philfry41/grok-playground/pkg/chat"
)

const (
	DefaultGrokBaseURL = "https://api.x.ai/v1"
	DefaultGrokModel   = "grok-3"

	DefaultGrokTemperature = 1.05
	DefaultGrokTopP        = 0.9
	DefaultGrokMaxTokens   = 1200

	// Penalties applied when the caller leaves them unset.
	defaultPresencePenalty  = 0.6
	defaultFrequencyPenalty = 0.3

	// retryMaxTokens caps the minimal-payload retry after a 400.
	retryMaxTokens = 512
)

// Reasoning models sometimes leak chain-of-thought into the completion.
// These strip the known wrappers before the text reaches the user.
var (
	thinkBlockRegex = regexp.MustCompile(`(?is)(<think>.*?</think>|<\|begin_of_thought\|>.*?<\|end_of_thought\|>|` +
		"```" + `(?:thinking|reasoning|cot|cog).*?` + "```" + `)`)
	thoughtPrefixRegex = regexp.MustCompile(`(?im)^[ \t]*(?:Thought:|Reasoning:)[ \t]*`)
)

// GrokService implements LLMService for the xAI chat completions API.
type GrokService struct {
	apiKey       string
	modelName    string
	baseURL      string
	retryMinimal bool
	httpClient   *http.Client
	logger       *slog.Logger
}

// GrokChatRequest represents the request structure for xAI chat completions
type GrokChatRequest struct {
	Model            string             `json:"model"`
	Messages         []chat.ChatMessage `json:"messages"`
	Temperature      float64            `json:"temperature"`
	TopP             float64            `json:"top_p"`
	MaxTokens        int                `json:"max_tokens"`
	Stream           bool               `json:"stream"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	Stop             []string           `json:"stop,omitempty"`
}

// GrokChatChoice represents a single choice in the xAI response
type GrokChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// GrokChatResponse represents the response structure for xAI chat completions
type GrokChatResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []GrokChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewGrokService creates a new xAI service. The API key is required;
// model and base URL fall back to defaults when empty.
func NewGrokService(apiKey, modelName, baseURL string, retryMinimal bool, logger *slog.Logger) (*GrokService, error) {
	if apiKey == "" {
		return nil, &ConfigError{Service: "grok", Missing: "XAI_API_KEY"}
	}
	if modelName == "" {
		modelName = DefaultGrokModel
	}
	if baseURL == "" {
		baseURL = DefaultGrokBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GrokService{
		apiKey:       apiKey,
		modelName:    modelName,
		baseURL:      strings.TrimRight(baseURL, "/"),
		retryMinimal: retryMinimal,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// ModelName returns the configured model.
func (g *GrokService) ModelName() string { return g.modelName }

// Generate produces one chat completion. Unset options are filled with
// service defaults. On a 400 response the call is retried once with a
// minimal payload, which recovers from parameter combinations the API
// rejects. Leaked reasoning blocks are stripped from the output.
func (g *GrokService) Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error) {
	req := GrokChatRequest{
		Model:            g.modelName,
		Messages:         messages,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		MaxTokens:        opts.MaxTokens,
		Stream:           false,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
		Stop:             opts.Stop,
	}
	if req.Temperature == 0 {
		req.Temperature = DefaultGrokTemperature
	}
	if req.TopP == 0 {
		req.TopP = DefaultGrokTopP
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultGrokMaxTokens
	}
	if req.PresencePenalty == nil {
		req.PresencePenalty = chat.Float64(defaultPresencePenalty)
	}
	if req.FrequencyPenalty == nil {
		req.FrequencyPenalty = chat.Float64(defaultFrequencyPenalty)
	}

	content, status, err := g.chatCompletion(ctx, req)
	if err == nil {
		return cleanThinking(content), nil
	}

	if status == http.StatusBadRequest && g.retryMinimal {
		g.logger.Warn("request rejected, retrying with minimal payload", "error", err)
		minimal := GrokChatRequest{
			Model:     req.Model,
			Messages:  req.Messages,
			MaxTokens: min(retryMaxTokens, req.MaxTokens),
			Stream:    false,
		}
		content, _, retryErr := g.chatCompletion(ctx, minimal)
		if retryErr != nil {
			return "", fmt.Errorf("minimal retry failed: %w (original: %v)", retryErr, err)
		}
		return cleanThinking(content), nil
	}

	return "", err
}

func (g *GrokService) chatCompletion(ctx context.Context, grokReq GrokChatRequest) (string, int, error) {
	reqBody, err := json.Marshal(grokReq)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, &TransportError{
			Service:    "grok",
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
	}

	var grokResp GrokChatResponse
	if err := json.Unmarshal(body, &grokResp); err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}

	if grokResp.Error != nil {
		return "", resp.StatusCode, fmt.Errorf("API error: %s", grokResp.Error.Message)
	}

	if len(grokResp.Choices) == 0 {
		return "", resp.StatusCode, fmt.Errorf("API returned no choices")
	}

	choice := grokResp.Choices[0]
	if choice.FinishReason == "length" {
		g.logger.Debug("response truncated by max_tokens",
			"completion_tokens", grokResp.Usage.CompletionTokens)
	}

	return choice.Message.Content, resp.StatusCode, nil
}

// errorDetail pulls the server's error object out of a failed response
// body, falling back to the raw text.
func errorDetail(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		return string(payload.Error)
	}
	return string(body)
}

func cleanThinking(s string) string {
	s = thinkBlockRegex.ReplaceAllString(s, "")
	s = thoughtPrefixRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
