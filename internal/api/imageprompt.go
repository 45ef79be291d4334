package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joestump/village-forge/internal/imageprompt"
)

// imagePrompt derives a diffusion request from a generated description.
// POST /image-prompt
func imagePrompt(w http.ResponseWriter, r *http.Request) {
	var req ImagePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", codeBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required", codeBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, imageprompt.NewRequest(req.Text))
}
