// Package llm provides the remote text-generation adapter used to fetch facts.
// Providers speak plain net/http; rate limiting is layered on with x/time/rate.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNoAPIKey is returned by NewProvider when no usable key was supplied.
	ErrNoAPIKey = errors.New("llm: api key not configured")
	// ErrEmptyResponse means the API answered but carried no text.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrRateLimited is returned when the local request budget is spent.
	ErrRateLimited = errors.New("llm: local rate limit exceeded")
)

// Provider is the interface for text completions.
type Provider interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
	// Name returns a human-readable provider name (e.g., "google/gemini-2.5-flash").
	Name() string
}

// CompletionOpts configures a single completion request.
type CompletionOpts struct {
	MaxTokens   int     // 0 = provider default
	Temperature float64 // 0.0-2.0
	Model       string  // override model for this request
	System      string  // optional system prompt
}

// Config holds provider configuration.
type Config struct {
	Provider string // "google", "openrouter"
	Model    string
	APIKey   string
	BaseURL  string // optional URL override
	// RatePerMinute caps outgoing requests; 0 disables the limiter.
	RatePerMinute int
}

// NewProvider creates a provider from the given config.
func NewProvider(cfg Config) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s provider: %w", cfg.Provider, ErrNoAPIKey)
	}

	var p Provider
	switch strings.ToLower(cfg.Provider) {
	case "", "google":
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		p = &googleProvider{apiKey: cfg.APIKey, model: model, baseURL: strings.TrimRight(baseURL, "/")}

	case "openrouter":
		model := cfg.Model
		if model == "" {
			model = "openai/gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		p = &openrouterProvider{apiKey: cfg.APIKey, model: model, baseURL: strings.TrimRight(baseURL, "/")}

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: google, openrouter)", cfg.Provider)
	}

	if cfg.RatePerMinute > 0 {
		p = WithRateLimit(p, cfg.RatePerMinute)
	}
	return p, nil
}

// ParseLLMFlag parses a --llm flag value into a Config.
// Format: "provider/model", e.g. "google/gemini-2.5-flash" or "openrouter/openai/gpt-4o-mini".
func ParseLLMFlag(flag string) (Config, error) {
	if flag == "" {
		return Config{Provider: "google", Model: "gemini-2.5-flash"}, nil
	}

	parts := strings.SplitN(flag, "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return Config{}, fmt.Errorf("invalid --llm format %q: expected provider/model (e.g., google/gemini-2.5-flash)", flag)
	}

	provider := strings.ToLower(parts[0])
	switch provider {
	case "google", "openrouter":
		return Config{Provider: provider, Model: parts[1]}, nil
	default:
		return Config{}, fmt.Errorf("unknown provider %q in --llm flag (supported: google, openrouter)", provider)
	}
}

// rateLimited rejects calls once the token bucket is empty instead of waiting.
type rateLimited struct {
	Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a limiter allowing perMinute requests per minute.
func WithRateLimit(p Provider, perMinute int) Provider {
	return &rateLimited{
		Provider: p,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *rateLimited) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	if !r.limiter.Allow() {
		return "", ErrRateLimited
	}
	return r.Provider.Complete(ctx, prompt, opts)
}
