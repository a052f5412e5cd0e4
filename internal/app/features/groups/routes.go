// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// DIRECTORY
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/join", h.HandleJoin)

		// CHAT
		pr.Get("/{id}/messages", h.ServeMessages)
		pr.Post("/{id}/messages", h.HandlePostMessage)
		pr.Get("/{id}/stream", h.ServeStream)

		// SHARED FILES
		pr.Get("/{id}/files", h.ServeFiles)
		pr.Post("/{id}/files", h.HandleUploadFile)
		pr.Get("/{id}/files/{fileID}", h.HandleDownloadFile)
		pr.Delete("/{id}/files/{fileID}", h.HandleDeleteFile)
	})

	return r
}
