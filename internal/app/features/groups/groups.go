// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	groupstore "github.com/dalemusser/studypal/internal/app/store/groups"
	membershipstore "github.com/dalemusser/studypal/internal/app/store/memberships"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studypal/internal/app/system/inputval"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createInput struct {
	Name        string `json:"name" validate:"notblank,max=100" label:"Name"`
	Description string `json:"description" validate:"max=500" label:"Description"`
	IsPrivate   bool   `json:"isPrivate"`
}

// groupSummary is one row of the group directory.
type groupSummary struct {
	models.StudyGroup
	MemberCount  int64 `json:"memberCount"`
	MessageCount int64 `json:"messageCount"`
	IsMember     bool  `json:"isMember"`
}

// ServeList returns public groups plus private groups the caller belongs to.
// GET /groups?query=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	q := normalize.QueryParam(query.Get(r, "query"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list groups")
	defer cancel()

	mine, err := h.Members.GroupIDsForUser(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list memberships failed", err)
		return
	}
	list, err := h.Groups.Search(ctx, mine, q)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "search groups failed", err)
		return
	}

	ids := make([]primitive.ObjectID, len(list))
	for i, g := range list {
		ids[i] = g.ID
	}
	members, err := h.Members.CountsByGroup(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count members failed", err)
		return
	}
	messages, err := h.Messages.CountsByGroup(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count messages failed", err)
		return
	}

	isMine := make(map[primitive.ObjectID]bool, len(mine))
	for _, id := range mine {
		isMine[id] = true
	}
	out := make([]groupSummary, 0, len(list))
	for _, g := range list {
		out = append(out, groupSummary{
			StudyGroup:   g,
			MemberCount:  members[g.ID],
			MessageCount: messages[g.ID],
			IsMember:     isMine[g.ID],
		})
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate stores a group together with the caller's owner membership.
// POST /groups
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in createInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode group failed", err, "Invalid JSON body.")
		return
	}
	in.Name = normalize.Name(in.Name)
	in.Description = strings.TrimSpace(htmlsanitize.StripTags(in.Description))
	if res := inputval.Validate(in); res.HasErrors() {
		uierrors.BadRequest(w, res.First(), res.FirstField())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create group")
	defer cancel()

	var created models.StudyGroup
	err := h.runTx(ctx, func(ctx context.Context) error {
		g, err := h.Groups.Create(ctx, models.StudyGroup{
			Name:        in.Name,
			Description: in.Description,
			IsPrivate:   in.IsPrivate,
			OwnerID:     u.ID,
		})
		if err != nil {
			return err
		}
		if _, err := h.Members.Add(ctx, g.ID, u.ID, models.GroupRoleOwner); err != nil {
			return err
		}
		created = g
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err)
		return
	}

	h.Log.Info("group created", zap.String("group_id", created.ID.Hex()), zap.String("owner_id", u.ID))
	uierrors.WriteJSON(w, http.StatusCreated, groupSummary{StudyGroup: created, MemberCount: 1, IsMember: true})
}

// HandleJoin adds the caller to a public group and notifies the owner.
// POST /groups/{id}/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Group not found.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "join group")
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.NotFound(w, "Group not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err)
		return
	}
	if g.IsPrivate {
		uierrors.Forbidden(w, "Private groups cannot be joined directly.")
		return
	}

	m, err := h.Members.Add(ctx, g.ID, u.ID, models.GroupRoleMember)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		uierrors.WriteJSON(w, http.StatusConflict, uierrors.Response{Error: "Already a member of this group."})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add membership failed", err)
		return
	}

	h.notifyOwner(ctx, g, u.ID)
	uierrors.WriteJSON(w, http.StatusOK, m)
}

// notifyOwner records a delivered group_join notification for the owner and
// pushes it to the owner's channel. Failures are logged only.
func (h *Handler) notifyOwner(ctx context.Context, g models.StudyGroup, joinerID string) {
	if h.Notifications == nil || g.OwnerID == joinerID {
		return
	}
	now := time.Now().UTC()
	groupID := g.ID
	n, err := h.Notifications.Insert(ctx, models.Notification{
		UserID:       g.OwnerID,
		Type:         models.NotificationGroupJoin,
		Title:        "New Member",
		Content:      "A new member has joined your study group: " + g.Name,
		GroupID:      &groupID,
		ScheduledFor: now,
		DeliveredAt:  &now,
	})
	if err != nil {
		h.Log.Warn("join notification failed",
			zap.String("group_id", g.ID.Hex()),
			zap.String("owner_id", g.OwnerID),
			zap.Error(err))
		return
	}
	h.publish(ctx, pubsub.UserChannel(g.OwnerID), pubsub.EventNotification, n)
}
