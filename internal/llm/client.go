// Package llm provides the optional text-generation backend used to assist
// triage, extraction, and customer email drafting. The pipeline never
// depends on a backend being configured or reachable; every caller falls
// back to its deterministic path when Complete returns an error.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Client generates a completion for a prompt.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var ErrUnknownProvider = errors.New("unknown llm provider")

type Config struct {
	Provider          string  `yaml:"provider"` // openai | anthropic | "" (disabled)
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 2
	defaultBurst             = 4
)

// New builds a client for the configured provider. A disabled provider
// returns (nil, nil); callers treat a nil client as "backend absent".
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "disabled", "none":
		return nil, nil
	case "openai":
		model, err := openai.New(openai.WithModel(cfg.Model), openai.WithToken(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		return newModelClient(model, cfg), nil
	case "anthropic":
		model, err := anthropic.New(anthropic.WithModel(cfg.Model), anthropic.WithToken(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("anthropic client: %w", err)
		}
		return newModelClient(model, cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// modelClient adapts a langchaingo model, rate-limiting calls and bounding
// each request with a timeout. Temperature is pinned to zero to keep
// model-assisted triage and extraction as consistent as possible.
type modelClient struct {
	model   llms.Model
	limiter *rate.Limiter
	timeout time.Duration
}

func newModelClient(model llms.Model, cfg Config) *modelClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &modelClient{
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurst),
		timeout: timeout,
	}
}

func (c *modelClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	return out, nil
}

// StripFences removes a Markdown code fence around a model response so
// JSON payloads decode whether or not the model wrapped them.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
