package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postcraft/internal/draftservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *draftservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/drafts", func(r chi.Router) {
		r.Get("/", h.ListDrafts)
		r.Post("/", h.CreateDraft)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Put("/", h.UpdateDraft)
			r.Delete("/", h.DeleteDraft)
			r.Post("/preview", h.PreviewDraft)
			r.Post("/publish", h.PublishDraft)
			r.Post("/schedule", h.ScheduleDraft)
			r.Delete("/schedule", h.UnscheduleDraft)
		})
	})

	r.Get("/search", h.Search)
	r.Post("/render", h.Render)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
