package providers

import (
	"context"
	"errors"
)

// ErrNoCredential means no model API key is configured; callers should run
// without the model path rather than fail.
var ErrNoCredential = errors.New("no model credential configured")

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single chat-completion call
type CompletionRequest struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
}

// Provider interface for LLM providers
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
