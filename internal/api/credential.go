package api

import (
	"net/http"
	"strings"

	"github.com/abhisek/studyhall/internal/textgen"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

func (h *handler) saveCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}
	if err := h.creds.Save(r.Context(), req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save API key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"api_key": textgen.Mask(strings.TrimSpace(req.APIKey))})
}

func (h *handler) clearCredential(w http.ResponseWriter, r *http.Request) {
	if err := h.creds.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "could not clear API key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
