package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joestump/village-forge/internal/config"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	defaultAnthropicModel   = "claude-haiku-4-5-20251001"
)

type anthropicGenerator struct {
	apiKey    string
	model     string
	baseURL   string
	transport *transport
}

func newAnthropicGenerator(cfg *config.Config, t *transport) *anthropicGenerator {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &anthropicGenerator{
		apiKey:    cfg.LLM.APIKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: t,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	TopK        int                `json:"top_k,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicGenerator) Generate(ctx context.Context, prompt string, opts Sampling) (string, error) {
	maxTokens := opts.MaxNewTokens
	if maxTokens <= 0 {
		maxTokens = DefaultSampling().MaxNewTokens
	}
	// The messages API accepts temperatures in [0, 1] only.
	temperature := min(opts.Temperature, 1)

	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopK:        opts.TopK,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := a.transport.do(ctx, http.MethodPost, a.baseURL+"/v1/messages", headers, body, &resp); err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
