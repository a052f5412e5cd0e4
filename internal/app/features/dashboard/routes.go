// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard widgets. Bootstrap mounts the returned router
// at "/" so the final paths are /stats and /storage.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/stats", h.ServeStats)
		pr.Get("/storage", h.ServeStorage)
	})

	return r
}
