// internal/app/features/materials/materials.go
package materials

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/features/files"
	"github.com/dalemusser/studypal/internal/app/store/queries/materialfilter"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleCreate stores a new material.
// POST /materials
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode material failed", err, "Invalid JSON body.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create material")
	defer cancel()

	m, err := h.Svc.Create(ctx, profiles.Identity{ID: u.ID, Name: u.Name, Email: u.Email}, in)
	if err != nil {
		h.ErrLog.Write(w, r, "create material failed", err)
		return
	}

	h.Log.Info("material created",
		zap.String("user_id", u.ID),
		zap.String("material_id", m.ID.Hex()),
		zap.String("type", m.Type()))
	uierrors.WriteJSON(w, http.StatusCreated, m)
}

// ServeList returns the caller's materials filtered by type, tag, priority
// and q, ordered by sort.
// GET /materials
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	f := materialfilter.FromValues(r.URL.Query())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list materials")
	defer cancel()

	list, err := h.Svc.List(ctx, u.ID, f)
	if err != nil {
		h.ErrLog.Write(w, r, "list materials failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// GET /materials/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, m)
}

// HandleDelete removes a material and, for pdfs, its blob.
// DELETE /materials/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete material")
	defer cancel()

	if err := h.Svc.Delete(ctx, u.ID, id); err != nil {
		h.ErrLog.Write(w, r, "delete material failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDownload streams a pdf's blob or redirects to a link's URL.
// Notes have nothing to download.
// GET /materials/{id}/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}

	switch b := m.Body.(type) {
	case models.LinkBody:
		http.Redirect(w, r, b.URL, http.StatusFound)
	case models.PDFBody:
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "download material")
		defer cancel()

		rc, info, err := h.Svc.Blobs.Get(ctx, b.FileID)
		if errors.Is(err, blobstore.ErrNotFound) {
			uierrors.NotFound(w, "File not found.")
			return
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "open material blob failed", err, zap.String("file_id", b.FileID))
			return
		}
		defer rc.Close()
		files.ServeBlob(w, rc, info, m.Title+".pdf", h.Log)
	default:
		uierrors.NotFound(w, "This material has no file.")
	}
}

// load resolves {id} to one of the caller's materials, writing the error
// response itself when it cannot.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (models.Material, bool) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return models.Material{}, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get material")
	defer cancel()

	m, err := h.Svc.Get(ctx, u.ID, id)
	if err != nil {
		h.ErrLog.Write(w, r, "get material failed", err)
		return models.Material{}, false
	}
	return m, true
}

// parseID reads {id}. A malformed id cannot name an existing material, so it
// is reported as not found.
func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Material not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
