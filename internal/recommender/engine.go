package recommender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospitalhub/internal/metrics"
	"hospitalhub/internal/models/providers"

	"github.com/rs/zerolog"
)

const (
	// DefaultModel is used when neither the engine nor the request names one
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature keeps replies close to deterministic
	DefaultTemperature = 0.2
	// DefaultTimeout bounds a single model call
	DefaultTimeout = 20 * time.Second

	noInventoryImpact = "No inventory data to analyze."
)

// Engine coordinates normalization, metrics, prompting, the model call,
// validation and fallback. It always produces a well-formed Response.
type Engine struct {
	provider    providers.Provider
	model       string
	temperature float64
	timeout     time.Duration
	now         func() time.Time
	logger      zerolog.Logger
	metrics     *metrics.Collector
}

// Option configures an Engine
type Option func(*Engine)

// WithModel sets the default model identifier
func WithModel(model string) Option {
	return func(e *Engine) {
		if model != "" {
			e.model = model
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float64) Option {
	return func(e *Engine) { e.temperature = t }
}

// WithTimeout bounds each model call
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records outcomes on c
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine creates an engine. A nil provider disables the model path.
func NewEngine(provider providers.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:    provider,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelEnabled reports whether a provider is configured
func (e *Engine) ModelEnabled() bool {
	return e.provider != nil
}

// Generate runs the recommendation pipeline. It never returns an error:
// provider failures, timeouts and invalid replies all route to Fallback.
func (e *Engine) Generate(ctx context.Context, req Request) Response {
	if len(req.InventoryData) == 0 {
		e.metrics.RecordRecommendation(metrics.SourceEmpty)
		return EmptyResponse(noInventoryImpact)
	}

	now := e.now()
	items := Normalize(req.InventoryData)
	items = Enrich(items, ComputeMetrics(req.UsageHistory, items))

	useAI := req.Options.UseAI == nil || *req.Options.UseAI
	if !useAI || e.provider == nil {
		return e.fallback(items, now)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	model := e.model
	if req.Options.Model != "" {
		model = req.Options.Model
	}

	text, elapsed, err := e.callModel(ctx, providers.CompletionRequest{
		Model:       model,
		Temperature: e.temperature,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: SystemPrompt},
			{Role: providers.RoleUser, Content: BuildPrompt(items, req.UsageHistory, req.Filters, now)},
		},
	})
	if err != nil {
		e.metrics.RecordModelCall(metrics.OutcomeError, elapsed)
		e.logger.Warn().Err(err).Str("model", model).Msg("model call failed, using fallback rules")
		return e.fallback(items, now)
	}

	resp, err := ParseAndValidate(text)
	if err != nil {
		e.metrics.RecordModelCall(metrics.OutcomeInvalid, elapsed)
		e.logger.Warn().Err(err).Str("model", model).Msg("model reply rejected, using fallback rules")
		return e.fallback(items, now)
	}

	e.metrics.RecordModelCall(metrics.OutcomeOK, elapsed)
	e.metrics.RecordRecommendation(metrics.SourceAI)
	return *resp
}

func (e *Engine) fallback(items []InventoryItem, now time.Time) Response {
	e.metrics.RecordRecommendation(metrics.SourceFallback)
	return Fallback(items, now)
}

// callModel performs the single, unretried model call. A panic inside the
// provider is reported as an error.
func (e *Engine) callModel(ctx context.Context, req providers.CompletionRequest) (text string, elapsed time.Duration, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("provider panic: %v", r)
		}
		elapsed = time.Since(start)
	}()

	text, err = e.provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", 0, fmt.Errorf("model call timed out after %s: %w", e.timeout, err)
		}
		return "", 0, err
	}
	return text, 0, nil
}
