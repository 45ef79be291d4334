package api

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/joestump/village-forge/internal/build"
	"github.com/joestump/village-forge/internal/llm"
)

const (
	healthTTL     = 5 * time.Second
	healthTimeout = 3 * time.Second
	healthKey     = "model"
)

type modelStatus struct {
	running bool
	version string
	err     string
}

type healthHandler struct {
	gen    llm.Generator
	cache  *cache.Cache
	logger *zap.Logger
}

func newHealthHandler(gen llm.Generator, logger *zap.Logger) *healthHandler {
	return &healthHandler{
		gen:    gen,
		cache:  cache.New(healthTTL, 2*healthTTL),
		logger: logger,
	}
}

// Check reports whether the model server answers and which version it runs.
// The probe result is cached briefly so a polling front end does not hammer
// the model server.
// GET /health
func (h *healthHandler) Check(w http.ResponseWriter, r *http.Request) {
	st := h.modelStatus(r.Context())

	resp := HealthResponse{
		Status:       "healthy",
		ModelRunning: st.running,
		ModelVersion: st.version,
		Error:        st.err,
		Version:      build.Version,
		Commit:       build.Commit,
		Timestamp:    time.Now(),
	}
	if !st.running {
		resp.Status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *healthHandler) modelStatus(ctx context.Context) modelStatus {
	if v, ok := h.cache.Get(healthKey); ok {
		return v.(modelStatus)
	}

	var st modelStatus
	vr, ok := h.gen.(llm.VersionReporter)
	if !ok {
		// Hosted providers have no version endpoint; assume reachable.
		st.running = h.gen != nil
	} else {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		version, err := vr.Version(ctx)
		if err != nil {
			h.logger.Warn("model health check failed", zap.Error(err))
			st.err = err.Error()
		} else {
			st.running = true
			st.version = version
		}
	}

	h.cache.SetDefault(healthKey, st)
	return st
}
