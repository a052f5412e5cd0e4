// internal/app/features/groups/access.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	groupstore "github.com/dalemusser/studypal/internal/app/store/groups"
	membershipstore "github.com/dalemusser/studypal/internal/app/store/memberships"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memberOf loads the group in the {id} URL param and the caller's membership.
// It writes 404 for an unknown group and 403 for a non-member and then
// reports ok=false.
func (h *Handler) memberOf(w http.ResponseWriter, r *http.Request, userID string) (models.StudyGroup, models.GroupMembership, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Group not found.")
		return models.StudyGroup{}, models.GroupMembership{}, false
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "check group membership")
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.NotFound(w, "Group not found.")
		return models.StudyGroup{}, models.GroupMembership{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err, zap.String("group_id", id.Hex()))
		return models.StudyGroup{}, models.GroupMembership{}, false
	}

	m, err := h.Members.Get(ctx, id, userID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		uierrors.Forbidden(w, "Not a member of this group.")
		return models.StudyGroup{}, models.GroupMembership{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load membership failed", err, zap.String("group_id", id.Hex()))
		return models.StudyGroup{}, models.GroupMembership{}, false
	}
	return g, m, true
}

// publish sends payload on channel. Delivery is at-most-once, so failures
// are only logged.
func (h *Handler) publish(ctx context.Context, channel, event string, payload any) {
	if h.Bus == nil {
		return
	}
	pctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "publish "+event)
	defer cancel()

	if err := h.Bus.Publish(pctx, channel, event, payload); err != nil {
		h.Log.Warn("publish failed", zap.String("channel", channel), zap.String("event", event), zap.Error(err))
	}
}

func groupChannel(g models.StudyGroup) string {
	return pubsub.GroupChannel(g.ID.Hex())
}
