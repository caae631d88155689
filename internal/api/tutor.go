package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *handler) listSubjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subjects": h.tutor.ListSubjects()})
}

type startSessionRequest struct {
	Subject string `json:"subject"`
}

func (h *handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.tutor.StartSession(r.Context(), req.Subject))
}

func (h *handler) resumeSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}
	writeJSON(w, http.StatusOK, h.tutor.ResumeSession(r.Context(), id))
}

func (h *handler) currentSession(w http.ResponseWriter, _ *http.Request) {
	s, ok := h.tutor.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": s, "pending": h.tutor.Pending()})
}

func (h *handler) endSession(w http.ResponseWriter, _ *http.Request) {
	h.tutor.EndSession()
	w.WriteHeader(http.StatusNoContent)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if _, ok := h.tutor.Current(); !ok {
		writeError(w, http.StatusConflict, "no active session")
		return
	}
	if !h.tutor.SendMessage(r.Context(), req.Text) {
		writeError(w, http.StatusConflict, "a reply is still pending")
		return
	}
	s, _ := h.tutor.Current()
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	items, err := h.tutor.History(r.Context())
	if err != nil {
		h.log.Warn("history unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": items})
}
