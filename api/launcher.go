package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promptist/resolve"
	"promptist/shortcut"
)

type answersRequest struct {
	Answers map[string]string `json:"answers"`
}

func (h *handler) candidates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"context":   h.launcher.Context(),
		"templates": h.launcher.Candidates(r.URL.Query().Get("q")),
	})
}

func (h *handler) questions(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "list questions")
		return
	}
	questions := resolve.Questions(t.Content)
	if questions == nil {
		questions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":    questions,
		"placeholders": resolve.Placeholders(t.Content),
	})
}

func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err, "preview template")
		return
	}
	text, err := h.launcher.Preview(chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeError(w, err, "preview template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err, "run template")
		return
	}
	res, err := h.launcher.Run(r.Context(), chi.URLParam(r, "id"), req.Answers)
	if err != nil {
		writeError(w, err, "run template")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) listShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.launcher.Registry().Entries())
}

func (h *handler) triggerShortcut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Combo shortcut.Combo `json:"combo"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err, "trigger shortcut")
		return
	}
	res, err := h.launcher.Trigger(r.Context(), req.Combo)
	if err != nil {
		writeError(w, err, "trigger shortcut")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
