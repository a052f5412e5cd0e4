// internal/app/features/notifications/notifications.go
package notifications

import (
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	notificationstore "github.com/dalemusser/studypal/internal/app/store/notifications"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ServeList returns the caller's delivered notifications, newest first.
// Reminders that are still scheduled are not included.
// GET /notifications?limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	limit := int64(defaultLimit)
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			uierrors.BadRequest(w, "Limit must be a positive number.", "limit")
			return
		}
		limit = min(n, maxLimit)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list notifications")
	defer cancel()

	list, err := h.Notifications.List(ctx, u.ID, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// POST /notifications/{id}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Notification not found.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	err = h.Notifications.MarkRead(ctx, u.ID, id)
	if errors.Is(err, notificationstore.ErrNotFound) {
		uierrors.NotFound(w, "Notification not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark notification read failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
