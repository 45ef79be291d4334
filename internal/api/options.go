package api

import (
	"net/http"

	"github.com/joestump/village-forge/internal/village"
)

type optionsHandler struct {
	catalog *village.Catalog
}

// List returns the dropdown options for the chat front end.
// GET /options
func (h *optionsHandler) List(w http.ResponseWriter, r *http.Request) {
	c := h.catalog
	if c == nil {
		c = village.DefaultCatalog()
	}
	writeJSON(w, http.StatusOK, c.Options)
}
