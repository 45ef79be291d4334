// Package api serves the prompt composition and generation endpoints used by
// the chat front end.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/village"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Generator llm.Generator
	Store     store.GenerationStoreIface
	Catalog   *village.Catalog
	Sampling  llm.Sampling
	// NullSentinel blanks settings sent as the "- null" placeholder.
	NullSentinel bool
	Logger       *zap.Logger
}

// NewRouter creates the chi router for the HTTP API.
func NewRouter(deps Deps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	// The chat front end is served from another origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	gen := &generateHandler{
		gen:          deps.Generator,
		store:        deps.Store,
		sampling:     deps.Sampling,
		nullSentinel: deps.NullSentinel,
		logger:       logger,
	}
	health := newHealthHandler(deps.Generator, logger)
	history := &generationsHandler{store: deps.Store}
	options := &optionsHandler{catalog: deps.Catalog}

	r.Post("/generate", gen.Generate)
	r.Post("/chat/generate", gen.ChatGenerate)
	r.Post("/image-prompt", imagePrompt)
	r.Get("/options", options.List)
	r.Get("/health", health.Check)

	r.Route("/generations", func(r chi.Router) {
		r.Get("/", history.List)
		r.Get("/stats", history.Stats)
		r.Get("/{id}", history.Get)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", codeNotFound)
	})
	return r
}
