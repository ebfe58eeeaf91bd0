// Package oracle wraps the external reasoning service that scores and
// describes repositories.
//
// An [Oracle] turns a prompt into text. Backends exist for Gemini
// ([NewGemini]) and OpenAI-compatible chat APIs ([NewOpenAI]). [Cached]
// memoizes raw responses on a [cache.Store], and [Observed] reports every
// call through [observability.Oracle].
//
// Oracles are asked for JSON but do not always comply. [CompleteJSON] and
// [ExtractJSON] repair the usual deviations: Markdown code fences and prose
// around the payload.
//
// [cache.Store]: github.com/matzehuels/repolens/pkg/cache.Store
// [observability.Oracle]: github.com/matzehuels/repolens/pkg/observability.Oracle
package oracle

import (
	"context"
	"fmt"
	"time"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
)

// Oracle completes prompts. Implementations must be safe for concurrent use.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to [Oracle].
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config selects and configures a backend.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string // OpenAI-compatible endpoints only
	Temperature float32
	Timeout     time.Duration // per attempt

	// Retries is the number of extra attempts after a transport failure.
	Retries int
}

// New builds the backend named by cfg.Provider, wrapped with [Retrying]
// and [Observed].
func New(ctx context.Context, cfg Config) (Oracle, error) {
	if cfg.APIKey == "" {
		return nil, rlerrors.New(rlerrors.ErrCodeInvalidConfig, "%s: api key is required", cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderGemini, "":
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
		g, err := NewGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return Observed(Retrying(g, cfg.Retries, time.Second), ProviderGemini+":"+cfg.Model), nil
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
		return Observed(Retrying(NewOpenAI(cfg), cfg.Retries, time.Second), ProviderOpenAI+":"+cfg.Model), nil
	default:
		return nil, rlerrors.New(rlerrors.ErrCodeUnsupported, "unknown oracle provider %q", cfg.Provider)
	}
}

// withTimeout bounds one call when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func contractError(provider, format string, args ...any) error {
	return rlerrors.New(rlerrors.ErrCodeOracleContract, "%s: %s", provider, fmt.Sprintf(format, args...))
}
