// internal/app/features/dashboard/stats.go
package dashboard

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"golang.org/x/sync/errgroup"
)

type statsResponse struct {
	TotalMaterials int64 `json:"totalMaterials"`
	DueThisWeek    int64 `json:"dueThisWeek"`
	SharedWithMe   int64 `json:"sharedWithMe"`
	RecentActivity int64 `json:"recentActivity"`
}

// ServeStats returns the dashboard counters. The four counts are independent
// and run concurrently; any failure fails the request.
// GET /stats
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	now := h.now()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard stats")
	defer cancel()

	var out statsResponse
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalMaterials, err = h.Materials.Count(gctx, u.ID)
		return err
	})
	g.Go(func() (err error) {
		out.DueThisWeek, err = h.Events.CountStartingBetween(gctx, u.ID, now, now.Add(7*24*time.Hour))
		return err
	})
	g.Go(func() (err error) {
		out.RecentActivity, err = h.Materials.CountSince(gctx, u.ID, now.Add(-24*time.Hour))
		return err
	})
	g.Go(func() error {
		groups, err := h.Memberships.GroupIDsForUser(gctx, u.ID)
		if err != nil || len(groups) == 0 {
			return err
		}
		out.SharedWithMe, err = h.GroupFiles.CountSharedWith(gctx, groups, u.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard stats failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}
