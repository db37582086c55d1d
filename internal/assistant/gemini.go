// Package assistant adapts external language models to the service.Generator
// interface.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/atinyakov/JobTracker/internal/metrics"
	"github.com/atinyakov/JobTracker/internal/models"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("assistant not configured")

// LLM generates text through a langchaingo model.
type LLM struct {
	model llms.Model
	opts  []llms.CallOption
}

// NewGemini builds an LLM backed by Google's Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (*LLM, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return New(client), nil
}

// New wraps any langchaingo model.
func New(model llms.Model, opts ...llms.CallOption) *LLM {
	if len(opts) == 0 {
		opts = []llms.CallOption{llms.WithTemperature(0.4)}
	}
	return &LLM{model: model, opts: opts}
}

// Generate sends prompt as a single human message and returns the reply text.
func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, l.opts...)
	if err != nil {
		metrics.ObserveAssistantCall("error", time.Since(start))
		return "", fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	metrics.ObserveAssistantCall("ok", time.Since(start))
	return reply, nil
}

// Disabled is the generator used when no API key is configured.
type Disabled struct{}

// Generate always fails with models.ErrUpstream.
func (Disabled) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: %w", models.ErrUpstream, ErrNotConfigured)
}
