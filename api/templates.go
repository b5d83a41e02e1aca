package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"promptist/apps"
	"promptist/prompt"
)

// appFromQuery builds the app filter from ?app= (a tracked app name in any
// case, or any bundle id) and ?name= (a display name).
func appFromQuery(r *http.Request) *apps.Frontmost {
	q := r.URL.Query()
	app, name := q.Get("app"), q.Get("name")
	if app == "" && name == "" {
		return nil
	}
	if target := apps.ParseTarget(app); target.Kind == apps.KindTracked {
		cfg, _ := target.App.Config()
		f := apps.Identify(cfg.BundleIDs[0], name)
		return &f
	}
	f := apps.Identify(app, name)
	return &f
}

func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := prompt.Filter{
		App:             appFromQuery(r),
		IncludeUnlinked: q.Get("unlinked") == "true",
		Query:           q.Get("q"),
		Tag:             q.Get("tag"),
	}
	writeJSON(w, http.StatusOK, h.store.Filter(f))
}

func (h *handler) recentTemplates(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, h.store.Recent(n))
}

func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "get template")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var t prompt.Template
	if err := decodeBody(r, &t, false); err != nil {
		writeError(w, err, "create template")
		return
	}
	created, err := h.store.Create(t)
	if err != nil {
		writeError(w, err, "create template")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var t prompt.Template
	if err := decodeBody(r, &t, false); err != nil {
		writeError(w, err, "update template")
		return
	}
	t.ID = chi.URLParam(r, "id")
	updated, err := h.store.Update(t)
	if err != nil {
		writeError(w, err, "update template")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reorderTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err, "reorder templates")
		return
	}
	if err := h.store.Reorder(req.IDs); err != nil {
		writeError(w, err, "reorder templates")
		return
	}
	writeJSON(w, http.StatusOK, h.store.List())
}
