// internal/app/features/session/routes.go
package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the session endpoints. signInLimit, when non-nil, wraps the
// token exchange.
func Routes(h *Handler, signInLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCurrent)
	if signInLimit != nil {
		r.With(signInLimit).Post("/", h.HandleSignIn)
	} else {
		r.Post("/", h.HandleSignIn)
	}
	r.Delete("/", h.HandleSignOut)
	return r
}
