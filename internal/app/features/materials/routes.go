// internal/app/features/materials/routes.go
package materials

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the material endpoints under whatever base path the caller
// chooses (typically "/materials" from bootstrap).
//
// Example from bootstrap:
//
//	h := materials.NewHandler(svc, errLog, logger)
//	r.Mount("/materials", materials.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{id}", h.ServeGet)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/download", h.HandleDownload)
	})

	return r
}
