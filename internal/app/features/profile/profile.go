// internal/app/features/profile/profile.go
package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	userstore "github.com/dalemusser/studypal/internal/app/store/users"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/inputval"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

type profileResponse struct {
	models.User
	Tags []models.Tag `json:"tags"`
}

type onboardingInput struct {
	Major        string `json:"major" validate:"notblank,major" label:"Major"`
	AcademicYear string `json:"academicYear" validate:"notblank,academicyear" label:"Academic year"`
}

// ServeProfile returns the caller's profile and tags.
// GET /user
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load profile")
	defer cancel()

	user, err := h.Users.Get(ctx, u.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.NotFound(w, "Profile not found. Complete onboarding first.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err)
		return
	}

	tags, err := h.Tags.List(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profile tags failed", err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	uierrors.WriteJSON(w, http.StatusOK, profileResponse{User: user, Tags: tags})
}

// HandleOnboarding creates the caller's profile with the default tags.
// POST /onboarding
func (h *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in onboardingInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode onboarding failed", err, "Invalid JSON body.")
		return
	}
	in.Major = normalize.Lower(in.Major)
	in.AcademicYear = normalize.Lower(in.AcademicYear)
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.BadRequest(w, res.First(), res.FirstField())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "onboard")
	defer cancel()

	ident := profiles.Identity{ID: u.ID, Name: u.Name, Email: u.Email}
	user, err := h.Provisioner.Onboard(ctx, ident, in.Major, in.AcademicYear)
	if err != nil {
		h.ErrLog.Write(w, r, "onboarding failed", err)
		return
	}

	tags, err := h.Tags.List(ctx, u.ID)
	if err != nil {
		h.Log.Warn("list tags after onboarding failed", zap.String("user_id", u.ID), zap.Error(err))
		tags = []models.Tag{}
	}
	h.Log.Info("user onboarded", zap.String("user_id", u.ID), zap.String("major", user.Major))
	uierrors.WriteJSON(w, http.StatusCreated, profileResponse{User: user, Tags: tags})
}
