package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// MockLLM is a mock implementation of the LLM interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}
	args := m.Called(ctx, messages, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func TestLangChainProvider_Complete(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("GenerateContent", mock.Anything,
		mock.MatchedBy(func(msgs []llms.MessageContent) bool {
			return len(msgs) == 2 &&
				msgs[0].Role == schema.ChatMessageTypeSystem &&
				msgs[1].Role == schema.ChatMessageTypeHuman &&
				msgs[1].Parts[0] == llms.TextContent{Text: "analyze"}
		}),
		mock.MatchedBy(func(opts llms.CallOptions) bool {
			return opts.Model == "gpt-4o-mini" && opts.Temperature == 0.2 && opts.MaxTokens == 0
		}),
	).Return(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"recommendations": []}`}},
	}, nil)

	p := NewLangChainProvider("openai", mockLLM)
	assert.Equal(t, "openai", p.Name())

	text, err := p.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Messages: []Message{
			{Role: RoleSystem, Content: "you are a pharmacist"},
			{Role: RoleUser, Content: "analyze"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"recommendations": []}`, text)
	mockLLM.AssertExpectations(t)
}

func TestLangChainProvider_Errors(t *testing.T) {
	t.Run("client error", func(t *testing.T) {
		mockLLM := new(MockLLM)
		mockLLM.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("429 too many requests"))

		_, err := NewLangChainProvider("openai", mockLLM).Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		assert.ErrorContains(t, err, "openai completion failed: 429 too many requests")
	})

	t.Run("no choices", func(t *testing.T) {
		mockLLM := new(MockLLM)
		mockLLM.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(&llms.ContentResponse{}, nil)

		_, err := NewLangChainProvider("github", mockLLM).Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: RoleUser, Content: "hi"}},
		})
		assert.ErrorContains(t, err, "empty response from github")
	})

	t.Run("unknown role", func(t *testing.T) {
		mockLLM := new(MockLLM)
		_, err := NewLangChainProvider("openai", mockLLM).Complete(context.Background(), CompletionRequest{
			Messages: []Message{{Role: "tool", Content: "hi"}},
		})
		assert.ErrorContains(t, err, "unsupported message role")
		mockLLM.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNew(t *testing.T) {
	_, err := New(Config{Type: OpenAIProvider})
	assert.ErrorIs(t, err, ErrNoCredential)

	_, err = New(Config{Type: OpenAIProvider, APIKey: "   "})
	assert.ErrorIs(t, err, ErrNoCredential)

	p, err := New(Config{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = New(Config{Type: "GitHub", APIKey: "ghp-test"})
	require.NoError(t, err)
	assert.Equal(t, "github", p.Name())

	_, err = New(Config{Type: AzureOpenAIProvider, APIKey: "key"})
	assert.ErrorContains(t, err, "requires a base URL")

	p, err = New(Config{Type: AzureOpenAIProvider, APIKey: "key", Model: "recs-deployment", BaseURL: "https://hospital.openai.azure.com"})
	require.NoError(t, err)
	assert.Equal(t, "azure", p.Name())

	_, err = New(Config{Type: "anthropic", APIKey: "key"})
	assert.ErrorContains(t, err, "unsupported provider type")
}
