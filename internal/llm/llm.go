// Package llm talks to the text-generation service that turns composed
// prompts into village descriptions.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/joestump/village-forge/internal/config"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Sampling holds the decoding parameters sent with each prompt. Providers
// ignore the ones their API does not support.
type Sampling struct {
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	MaxNewTokens      int     `json:"max_new_tokens"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size"`
	Seed              int     `json:"seed"`
}

// DefaultSampling returns the parameters the village prompts were tuned with.
func DefaultSampling() Sampling {
	return Sampling{
		Temperature:       0.85,
		TopP:              0.95,
		TopK:              40,
		MaxNewTokens:      512,
		RepetitionPenalty: 1.15,
		NoRepeatNgramSize: 4,
		Seed:              -1,
	}
}

// SamplingFromConfig converts configured sampling values.
func SamplingFromConfig(s config.Sampling) Sampling {
	return Sampling(s)
}

// Generator produces text for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Sampling) (string, error)
}

// VersionReporter is implemented by generators that can report the version
// of the model server behind them.
type VersionReporter interface {
	Version(ctx context.Context) (string, error)
}

// New creates a Generator for the configured provider.
func New(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := newTransport(cfg.LLM.Timeout, cfg.LLM.MaxRetries, logger.With(zap.String("provider", cfg.LLM.Provider)))

	switch cfg.LLM.Provider {
	case "ollama":
		return newOllamaGenerator(cfg, t), nil
	case "anthropic":
		return newAnthropicGenerator(cfg, t), nil
	case "openai", "openai-compatible":
		return newOpenAIGenerator(cfg, t), nil
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
}
