package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sitewright/internal/siteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *siteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/site", h.GetSite)
	r.Post("/rebuild", h.Rebuild)

	r.Get("/history", h.History)
	r.Post("/history/undo", h.Undo)
	r.Post("/history/redo", h.Redo)

	r.Patch("/articles/{id}", h.UpdateArticle)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
