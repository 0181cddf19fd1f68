package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangChainProvider implements the Provider interface on top of any
// langchaingo chat model
type LangChainProvider struct {
	name string
	llm  llms.Model
}

// NewLangChainProvider wraps an initialized langchaingo model
func NewLangChainProvider(name string, llm llms.Model) *LangChainProvider {
	return &LangChainProvider{name: name, llm: llm}
}

// Name returns the provider name
func (p *LangChainProvider) Name() string {
	return p.name
}

// Complete implements the Provider interface
func (p *LangChainProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		var msgType schema.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			msgType = schema.ChatMessageTypeSystem
		case RoleAssistant:
			msgType = schema.ChatMessageTypeAI
		case RoleUser:
			msgType = schema.ChatMessageTypeHuman
		default:
			return "", fmt.Errorf("unsupported message role: %s", msg.Role)
		}
		messages = append(messages, llms.TextParts(msgType, msg.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	response, err := p.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}

	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", p.name)
	}

	return response.Choices[0].Content, nil
}
