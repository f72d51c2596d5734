package services

import (
	"context"

	"github.com/philfry41/grok-playground/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// Generate produces one chat completion. Zero-value option fields
	// are filled with service defaults.
	Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerateOptions) (string, error)

	// ModelName returns the model the service generates with.
	ModelName() string
}
