// internal/app/features/files/routes.go
package files

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the upload endpoints (typically at "/files").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleUpload)
		// file ids contain a slash (owner/uuid.ext)
		pr.Get("/*", h.ServeDownload)
	})

	return r
}
