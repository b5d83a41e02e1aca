package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"promptist/launcher"
	"promptist/prompt"
	"promptist/tracker"
)

func RegisterRoutes(store *prompt.Manager, l *launcher.Launcher, tr *tracker.Tracker, staticFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{store: store, launcher: l, tracker: tr}

	// Templates
	r.Get("/api/templates", h.listTemplates)
	r.Post("/api/templates", h.createTemplate)
	r.Get("/api/templates/recent", h.recentTemplates)
	r.Post("/api/templates/reorder", h.reorderTemplates)
	r.Get("/api/templates/{id}", h.getTemplate)
	r.Put("/api/templates/{id}", h.updateTemplate)
	r.Delete("/api/templates/{id}", h.deleteTemplate)

	// Launcher flow
	r.Get("/api/launcher", h.candidates)
	r.Get("/api/templates/{id}/questions", h.questions)
	r.Post("/api/templates/{id}/preview", h.preview)
	r.Post("/api/templates/{id}/run", h.run)
	r.Get("/api/shortcuts", h.listShortcuts)
	r.Post("/api/shortcuts/trigger", h.triggerShortcut)

	// App context
	r.Get("/api/context", h.getContext)
	r.Put("/api/context", h.putContext)
	r.Get("/api/context/ws", h.handleWS)

	// Static catalogs
	r.Get("/api/apps", h.listApps)
	r.Get("/api/categories", h.listCategories)

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// Test FSes are already rooted at the page, so probe index.html.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Reading the file directly avoids http.FileServer's redirect of
	// "index.html" to "./".
	r.Get("/", serveFile(staticSub, "index.html"))

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	store    *prompt.Manager
	launcher *launcher.Launcher
	tracker  *tracker.Tracker
}
