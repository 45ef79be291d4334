package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/joestump/village-forge/internal/config"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openaiGenerator struct {
	apiKey    string
	model     string
	baseURL   string
	transport *transport
}

func newOpenAIGenerator(cfg *config.Config, t *transport) *openaiGenerator {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openaiGenerator{
		apiKey:    cfg.LLM.APIKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: t,
	}
}

type openaiRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p,omitempty"`
	Seed        *int            `json:"seed,omitempty"`
	Messages    []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *openaiGenerator) Generate(ctx context.Context, prompt string, opts Sampling) (string, error) {
	body := openaiRequest{
		Model:       o.model,
		MaxTokens:   opts.MaxNewTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
	}
	if opts.Seed >= 0 {
		seed := opts.Seed
		body.Seed = &seed
	}

	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}

	var resp openaiResponse
	if err := o.transport.do(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
