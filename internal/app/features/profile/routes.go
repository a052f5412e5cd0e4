// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the caller's profile, mounted at /user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Get("/", h.ServeProfile)
	return r
}

// OnboardingRoutes is mounted at /onboarding.
func OnboardingRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireSignedIn).Post("/", h.HandleOnboarding)
	return r
}
