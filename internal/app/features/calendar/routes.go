// internal/app/features/calendar/routes.go
package calendar

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the event endpoints (typically at "/events").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeMonth)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeEvent)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// CalendarRoutes mounts the read-only month view (typically at "/calendar").
func CalendarRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeMonth)
	return r
}
