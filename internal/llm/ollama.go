package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joestump/village-forge/internal/config"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama2"
)

type ollamaGenerator struct {
	model     string
	baseURL   string
	transport *transport
}

func newOllamaGenerator(cfg *config.Config, t *transport) *ollamaGenerator {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultOllamaModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &ollamaGenerator{
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: t,
	}
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	NumPredict    int     `json:"num_predict"`
	RepeatPenalty float64 `json:"repeat_penalty"`
	Seed          int     `json:"seed"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaVersionResponse struct {
	Version string `json:"version"`
}

func (o *ollamaGenerator) Generate(ctx context.Context, prompt string, opts Sampling) (string, error) {
	body := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Options: ollamaOptions{
			Temperature:   opts.Temperature,
			TopP:          opts.TopP,
			TopK:          opts.TopK,
			NumPredict:    opts.MaxNewTokens,
			RepeatPenalty: opts.RepetitionPenalty,
			Seed:          opts.Seed,
		},
	}

	var resp ollamaGenerateResponse
	if err := o.transport.do(ctx, http.MethodPost, o.baseURL+"/api/generate", nil, body, &resp); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Response, nil
}

// Version reports the Ollama server version.
func (o *ollamaGenerator) Version(ctx context.Context) (string, error) {
	var resp ollamaVersionResponse
	if err := o.transport.do(ctx, http.MethodGet, o.baseURL+"/api/version", nil, nil, &resp); err != nil {
		return "", fmt.Errorf("ollama version: %w", err)
	}
	return resp.Version, nil
}
