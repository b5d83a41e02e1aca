package api

import (
	"net/http"

	"promptist/apps"
	"promptist/category"
)

func (h *handler) listApps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apps.All())
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, category.WithCounts(h.store.List()))
}
