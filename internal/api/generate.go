package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/metrics"
	"github.com/joestump/village-forge/internal/prompt"
	"github.com/joestump/village-forge/internal/store"
)

type generateHandler struct {
	gen          llm.Generator
	store        store.GenerationStoreIface
	sampling     llm.Sampling
	nullSentinel bool
	logger       *zap.Logger
}

type outcome struct {
	id       string
	response string
	elapsed  time.Duration
}

// Generate composes a prompt from the six settings and sends it to the model.
// POST /generate
func (h *generateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var fields prompt.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", codeBadRequest)
		return
	}
	if h.nullSentinel {
		fields = fields.Without(prompt.IsNullSentinel)
	}

	out, err := h.run(r.Context(), store.SourceFields, fields, "")
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed", codeLLMError)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{
		ID:       out.id,
		Success:  true,
		Response: out.response,
	})
}

// ChatGenerate parses the settings out of a system message, adds the user's
// prompt as the message and sends the composed prompt to the model.
// POST /chat/generate
func (h *generateHandler) ChatGenerate(w http.ResponseWriter, r *http.Request) {
	var req ChatGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", codeBadRequest)
		return
	}

	fields := prompt.Parse(req.SystemMessage)
	if h.nullSentinel {
		fields = fields.Without(prompt.IsNullSentinel)
	}
	fields.Message = req.Prompt

	out, err := h.run(r.Context(), store.SourceChat, fields, req.SystemMessage)
	if err != nil {
		writeError(w, http.StatusBadGateway, "generation failed", codeLLMError)
		return
	}
	writeJSON(w, http.StatusOK, ChatGenerateResponse{
		ID:             out.id,
		Success:        true,
		Response:       out.response,
		GenerationTime: fmt.Sprintf("%.2fs", out.elapsed.Seconds()),
		Logs: GenerationLogs{
			GenerationTime: out.elapsed.Seconds(),
			Timestamp:      time.Now(),
		},
	})
}

// run composes, generates and records one generation. Recording failures are
// logged and never fail the request.
func (h *generateHandler) run(ctx context.Context, source string, fields prompt.Fields, systemMessage string) (outcome, error) {
	formatted := prompt.Compose(fields)
	h.logger.Debug("composed prompt", zap.String("source", source), zap.String("prompt", formatted))

	start := time.Now()
	response, genErr := h.gen.Generate(ctx, formatted, h.sampling)
	elapsed := time.Since(start)
	metrics.ObserveGeneration(source, elapsed.Seconds(), genErr)

	g := &store.Generation{
		Source:          source,
		Choice:          fields.Choice,
		Biome:           fields.Biome,
		Features:        fields.Features,
		Constriction:    fields.Constriction,
		TextStyle:       fields.TextStyle,
		Message:         fields.Message,
		SystemMessage:   systemMessage,
		FormattedPrompt: formatted,
		Response:        response,
		Success:         genErr == nil,
		DurationMS:      elapsed.Milliseconds(),
	}
	if genErr != nil {
		g.Error = genErr.Error()
		h.logger.Error("generation failed", zap.String("source", source), zap.Error(genErr))
	} else {
		h.logger.Info("generation completed", zap.String("source", source), zap.Duration("elapsed", elapsed))
	}

	if h.store != nil {
		if err := h.store.Record(context.WithoutCancel(ctx), g); err != nil {
			metrics.GenerationRecordErrorsTotal.Inc()
			h.logger.Error("record generation", zap.Error(err))
			g.ID = ""
		}
	}

	if genErr != nil {
		return outcome{}, genErr
	}
	return outcome{id: g.ID, response: response, elapsed: elapsed}, nil
}
