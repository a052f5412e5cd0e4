// internal/app/features/tags/tags.go
package tags

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	tagstore "github.com/dalemusser/studypal/internal/app/store/tags"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/inputval"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createInput struct {
	Name  string `json:"name" validate:"notblank,max=50" label:"Name"`
	Color string `json:"color" validate:"omitempty,hexcolor" label:"Color"`
}

type updateInput struct {
	Name  string `json:"name" validate:"max=50" label:"Name"`
	Color string `json:"color" validate:"omitempty,hexcolor" label:"Color"`
}

// GET /tags
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list tags")
	defer cancel()

	list, err := h.Tags.List(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tags failed", err)
		return
	}
	if list == nil {
		list = []models.Tag{}
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// POST /tags
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in createInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode tag failed", err, "Invalid JSON body.")
		return
	}
	in.Name = normalize.Tag(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.BadRequest(w, res.First(), res.FirstField())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create tag")
	defer cancel()

	t, err := h.Tags.Create(ctx, models.Tag{UserID: u.ID, Name: in.Name, Color: in.Color})
	if errors.Is(err, tagstore.ErrDuplicate) {
		uierrors.WriteJSON(w, http.StatusConflict, uierrors.Response{Error: "Tag already exists.", Field: "name"})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "insert tag failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, t)
}

// PATCH /tags/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in updateInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode tag failed", err, "Invalid JSON body.")
		return
	}
	in.Name = normalize.Tag(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.BadRequest(w, res.First(), res.FirstField())
		return
	}
	if in.Name == "" && in.Color == "" {
		uierrors.BadRequest(w, "Nothing to update.", "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update tag")
	defer cancel()

	t, err := h.Tags.Update(ctx, u.ID, id, in.Name, in.Color)
	switch {
	case errors.Is(err, tagstore.ErrNotFound):
		uierrors.NotFound(w, "Tag not found.")
		return
	case errors.Is(err, tagstore.ErrDuplicate):
		uierrors.WriteJSON(w, http.StatusConflict, uierrors.Response{Error: "Tag already exists.", Field: "name"})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update tag failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, t)
}

// DELETE /tags/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete tag")
	defer cancel()

	err := h.Tags.Delete(ctx, u.ID, id)
	if errors.Is(err, tagstore.ErrNotFound) {
		uierrors.NotFound(w, "Tag not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete tag failed", err)
		return
	}
	h.Log.Debug("tag deleted", zap.String("user_id", u.ID), zap.String("tag_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Tag not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
