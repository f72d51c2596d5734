package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/philfry41/grok-playground/pkg/chat"
)

func TestMockLLM(t *testing.T) {
	mock := NewMockLLM()

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}

	response, err := mock.Generate(context.Background(), messages, chat.GenerateOptions{MaxTokens: 100})
	if err != nil {
		t.Errorf("Generate failed: %v", err)
	}
	if response != "Mock response" {
		t.Errorf("Expected 'Mock response', got '%s'", response)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 Generate call, got %d", len(calls))
	}
	if calls[0].Opts.MaxTokens != 100 {
		t.Errorf("Expected recorded MaxTokens 100, got %d", calls[0].Opts.MaxTokens)
	}
	if calls[0].Messages[0].Content != "Hello" {
		t.Errorf("Expected recorded message 'Hello', got '%s'", calls[0].Messages[0].Content)
	}
}

func TestMockLLM_ErrorHandling(t *testing.T) {
	mock := NewMockLLM()

	expectedErr := fmt.Errorf("generation failed")
	mock.SetGenerateError(expectedErr)

	_, err := mock.Generate(context.Background(), nil, chat.GenerateOptions{})
	if err == nil {
		t.Fatalf("Expected error, got nil")
	}
	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%s', got '%s'", expectedErr.Error(), err.Error())
	}
}

func TestMockLLM_ResponseQueue(t *testing.T) {
	mock := NewMockLLM()
	mock.SetResponses("first", "second")

	for i, want := range []string{"first", "second", "second"} {
		got, err := mock.Generate(context.Background(), nil, chat.GenerateOptions{})
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: expected '%s', got '%s'", i, want, got)
		}
	}

	mock.Reset()
	if len(mock.Calls()) != 0 {
		t.Errorf("Expected no calls after Reset, got %d", len(mock.Calls()))
	}
}
