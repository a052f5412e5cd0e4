// internal/app/features/files/handler.go
package files

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves personal file uploads (the blobs behind pdf materials).
type Handler struct {
	Blobs     blobstore.Store
	MaxUpload int64
	// Quota caps each user's stored bytes; zero disables the check.
	Quota  int64
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(blobs blobstore.Store, maxUpload, quota int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Blobs:     blobs,
		MaxUpload: maxUpload,
		Quota:     quota,
		Log:       logger,
		ErrLog:    errLog,
	}
}

// HandleUpload stores a multipart "file" part under the caller's prefix.
// POST /files
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	file, header, err := ReadUpload(w, r, h.MaxUpload)
	switch {
	case errors.Is(err, ErrTooLarge):
		uierrors.WriteJSON(w, http.StatusRequestEntityTooLarge, uierrors.Response{Error: "File is too large."})
		return
	case errors.Is(err, ErrNoFile):
		uierrors.BadRequest(w, "A file is required.", "file")
		return
	case err != nil:
		h.ErrLog.LogBadRequest(w, r, "parse upload failed", err, "Invalid form data.")
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "upload file")
	defer cancel()

	err = CheckQuota(ctx, h.Blobs, u.ID, header.Size, h.Quota)
	if errors.Is(err, ErrOverQuota) {
		uierrors.WriteJSON(w, http.StatusRequestEntityTooLarge, uierrors.Response{Error: "Storage limit reached."})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "storage usage failed", err)
		return
	}

	up, err := Store(ctx, h.Blobs, func(name string) string { return blobstore.NewKey(u.ID, name) }, file, header)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "file upload failed", err, zap.String("file_name", header.Filename))
		return
	}

	h.Log.Info("file uploaded",
		zap.String("user_id", u.ID),
		zap.String("file_id", up.FileID),
		zap.Int64("size", up.FileSize))
	uierrors.WriteJSON(w, http.StatusCreated, up)
}

// ServeDownload streams one of the caller's blobs. Keys outside the caller's
// prefix are reported as not found.
// GET /files/{fileID...}
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	key := chi.URLParam(r, "*")
	if !blobstore.OwnedBy(key, u.ID) {
		uierrors.NotFound(w, "File not found.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "download file")
	defer cancel()

	rc, info, err := h.Blobs.Get(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		uierrors.NotFound(w, "File not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open blob failed", err, zap.String("file_id", key))
		return
	}
	defer rc.Close()

	ServeBlob(w, rc, info, key[strings.LastIndex(key, "/")+1:], h.Log)
}
