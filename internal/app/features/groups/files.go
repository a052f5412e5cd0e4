// internal/app/features/groups/files.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/features/files"
	groupfilestore "github.com/dalemusser/studypal/internal/app/store/groupfiles"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeFiles lists the files shared into a group, newest first.
// GET /groups/{id}/files
func (h *Handler) ServeFiles(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list group files")
	defer cancel()

	list, err := h.Files.List(ctx, g.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list group files failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}
	if list == nil {
		list = []models.GroupFile{}
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// HandleUploadFile stores a multipart "file" part and shares it with the group.
// POST /groups/{id}/files
func (h *Handler) HandleUploadFile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}

	file, header, err := files.ReadUpload(w, r, h.MaxUpload)
	switch {
	case errors.Is(err, files.ErrTooLarge):
		uierrors.WriteJSON(w, http.StatusRequestEntityTooLarge, uierrors.Response{Error: "File is too large."})
		return
	case errors.Is(err, files.ErrNoFile):
		uierrors.BadRequest(w, "A file is required.", "file")
		return
	case err != nil:
		h.ErrLog.LogBadRequest(w, r, "parse upload failed", err, "Invalid form data.")
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "share group file")
	defer cancel()

	err = files.CheckQuota(ctx, h.Blobs, u.ID, header.Size, h.Quota)
	if errors.Is(err, files.ErrOverQuota) {
		uierrors.WriteJSON(w, http.StatusRequestEntityTooLarge, uierrors.Response{Error: "Storage limit reached."})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "storage usage failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}

	groupID := g.ID.Hex()
	up, err := files.Store(ctx, h.Blobs, func(name string) string {
		return blobstore.NewGroupKey(u.ID, groupID, name)
	}, file, header)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store group file failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}

	gf, err := h.Files.Insert(ctx, models.GroupFile{
		GroupID:    g.ID,
		UploaderID: u.ID,
		Name:       up.FileName,
		FileID:     up.FileID,
		FileSize:   up.FileSize,
		MimeType:   up.ContentType,
	})
	if err != nil {
		if derr := h.Blobs.Delete(ctx, up.FileID); derr != nil {
			h.Log.Warn("orphaned blob after failed insert", zap.String("file_id", up.FileID), zap.Error(derr))
		}
		h.ErrLog.LogServerError(w, r, "insert group file failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}

	h.publish(r.Context(), groupChannel(g), pubsub.EventGroupFile, gf)
	uierrors.WriteJSON(w, http.StatusCreated, gf)
}

// HandleDownloadFile streams a shared file to any group member.
// GET /groups/{id}/files/{fileID}
func (h *Handler) HandleDownloadFile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}
	gf, ok := h.loadFile(w, r, g)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "download group file")
	defer cancel()

	rc, info, err := h.Blobs.Get(ctx, gf.FileID)
	if errors.Is(err, blobstore.ErrNotFound) {
		uierrors.NotFound(w, "File not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "open group file failed", err, zap.String("file_id", gf.FileID))
		return
	}
	defer rc.Close()

	files.ServeBlob(w, rc, info, gf.Name, h.Log)
}

// HandleDeleteFile removes a shared file. Only the uploader or the group
// owner may delete; the blob delete is best effort.
// DELETE /groups/{id}/files/{fileID}
func (h *Handler) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, m, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}
	gf, ok := h.loadFile(w, r, g)
	if !ok {
		return
	}
	if gf.UploaderID != u.ID && m.Role != models.GroupRoleOwner {
		uierrors.Forbidden(w, "Only the uploader or the group owner can delete this file.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete group file")
	defer cancel()

	if err := h.Blobs.Delete(ctx, gf.FileID); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		h.Log.Warn("blob delete failed; removing record anyway",
			zap.String("group_id", g.ID.Hex()),
			zap.String("file_id", gf.FileID),
			zap.Error(err))
	}

	err := h.Files.Delete(ctx, g.ID, gf.ID)
	if errors.Is(err, groupfilestore.ErrNotFound) {
		uierrors.NotFound(w, "File not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete group file failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadFile(w http.ResponseWriter, r *http.Request, g models.StudyGroup) (models.GroupFile, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "fileID"))
	if err != nil {
		uierrors.NotFound(w, "File not found.")
		return models.GroupFile{}, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load group file")
	defer cancel()

	gf, err := h.Files.Get(ctx, g.ID, id)
	if errors.Is(err, groupfilestore.ErrNotFound) {
		uierrors.NotFound(w, "File not found.")
		return models.GroupFile{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group file failed", err, zap.String("group_id", g.ID.Hex()))
		return models.GroupFile{}, false
	}
	return gf, true
}
