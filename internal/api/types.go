package api

import (
	"time"

	"github.com/joestump/village-forge/internal/store"
)

// ChatGenerateRequest is the request body for POST /chat/generate.
type ChatGenerateRequest struct {
	Prompt        string `json:"prompt"`
	SystemMessage string `json:"system_message"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	ID       string `json:"id,omitempty"`
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// ChatGenerateResponse is returned by POST /chat/generate.
type ChatGenerateResponse struct {
	ID             string         `json:"id,omitempty"`
	Success        bool           `json:"success"`
	Response       string         `json:"response"`
	GenerationTime string         `json:"generation_time"`
	Logs           GenerationLogs `json:"logs"`
}

// GenerationLogs carries timing details for the chat front end.
type GenerationLogs struct {
	GenerationTime float64   `json:"generation_time"`
	Timestamp      time.Time `json:"timestamp"`
}

// ImagePromptRequest is the request body for POST /image-prompt.
type ImagePromptRequest struct {
	Text string `json:"text"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string    `json:"status"`
	ModelRunning bool      `json:"model_running"`
	ModelVersion string    `json:"model_version,omitempty"`
	Error        string    `json:"error,omitempty"`
	Version      string    `json:"version"`
	Commit       string    `json:"commit"`
	Timestamp    time.Time `json:"timestamp"`
}

// GenerationResponse is the JSON representation of a stored generation.
type GenerationResponse struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Choice          string    `json:"choice"`
	Biome           string    `json:"biome"`
	Features        string    `json:"features"`
	Constriction    string    `json:"constriction"`
	TextStyle       string    `json:"textStyle"`
	Message         string    `json:"message"`
	SystemMessage   string    `json:"system_message,omitempty"`
	FormattedPrompt string    `json:"formatted_prompt"`
	Response        string    `json:"response"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	DurationMS      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// GenerationListResponse is the paginated response for GET /generations.
type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
	NextCursor  *string              `json:"next_cursor"`
}

// StatsResponse is returned by GET /generations/stats.
type StatsResponse struct {
	Total         int64            `json:"total"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	AvgDurationMS float64          `json:"avg_duration_ms"`
	BySource      map[string]int64 `json:"by_source"`
}

func toGenerationResponse(g *store.Generation) GenerationResponse {
	return GenerationResponse{
		ID:              g.ID,
		Source:          g.Source,
		Choice:          g.Choice,
		Biome:           g.Biome,
		Features:        g.Features,
		Constriction:    g.Constriction,
		TextStyle:       g.TextStyle,
		Message:         g.Message,
		SystemMessage:   g.SystemMessage,
		FormattedPrompt: g.FormattedPrompt,
		Response:        g.Response,
		Success:         g.Success,
		Error:           g.Error,
		DurationMS:      g.DurationMS,
		CreatedAt:       g.CreatedAt,
	}
}
