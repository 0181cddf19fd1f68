package providers

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	OpenAIProvider       ProviderType = "openai"
	AzureOpenAIProvider  ProviderType = "azure"
	GitHubModelsProvider ProviderType = "github"
)

const (
	githubModelsBaseURL    = "https://models.inference.ai.azure.com"
	defaultAzureAPIVersion = "2024-06-01"
)

// Config selects and authenticates a provider
type Config struct {
	Type       ProviderType
	APIKey     string
	Model      string
	BaseURL    string
	APIVersion string
}

// New builds the configured provider. It returns ErrNoCredential when no
// API key is set.
func New(cfg Config) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoCredential
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}

	typ := ProviderType(strings.ToLower(string(cfg.Type)))
	switch typ {
	case "", OpenAIProvider:
		typ = OpenAIProvider
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
	case GitHubModelsProvider:
		// GitHub Models uses an OpenAI-compatible API
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = githubModelsBaseURL
		}
		opts = append(opts, openai.WithBaseURL(baseURL))
	case AzureOpenAIProvider:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires a base URL (the resource endpoint)")
		}
		version := cfg.APIVersion
		if version == "" {
			version = defaultAzureAPIVersion
		}
		// the model doubles as the deployment name on Azure
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithAPIVersion(version),
		)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Type)
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", typ, err)
	}

	return NewLangChainProvider(string(typ), llm), nil
}
