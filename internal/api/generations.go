package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/village-forge/internal/store"
)

type generationsHandler struct {
	store store.GenerationStoreIface
}

// List returns stored generations, newest first.
// GET /generations?limit=&before=
func (h *generationsHandler) List(w http.ResponseWriter, r *http.Request) {
	before, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid before timestamp, expected RFC 3339", codeBadRequest)
		return
	}

	// Fetch limit+1 to detect next page.
	rows, err := h.store.ListRecentBefore(r.Context(), before, limit+1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
		return
	}

	var nextCursor *string
	if len(rows) > limit {
		cursor := encodeCursor(rows[limit-1].CreatedAt)
		nextCursor = &cursor
		rows = rows[:limit]
	}

	out := make([]GenerationResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, toGenerationResponse(g))
	}
	writeJSON(w, http.StatusOK, GenerationListResponse{
		Generations: out,
		NextCursor:  nextCursor,
	})
}

// Get returns one stored generation.
// GET /generations/{id}
func (h *generationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found", codeNotFound)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
		return
	}
	writeJSON(w, http.StatusOK, toGenerationResponse(g))
}

// Stats returns aggregate counts over the generation history.
// GET /generations/stats
func (h *generationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error", codeInternal)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Total:         stats.Total,
		Succeeded:     stats.Succeeded,
		Failed:        stats.Failed,
		AvgDurationMS: stats.AvgDurationMS,
		BySource:      stats.BySource,
	})
}
