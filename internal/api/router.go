package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bantay/internal/dashboard"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *dashboard.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/vocabulary", h.Vocabulary)

	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/overview", h.Overview)
		r.Get("/breakdown/{dimension}", h.Breakdown)
		r.Get("/top/{dimension}", h.Top)
		r.Get("/compare/{dimension}", h.Compare)
		r.Get("/monthly", h.Monthly)
		r.Get("/series", h.Series)
		r.Get("/forecast", h.Forecast)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
