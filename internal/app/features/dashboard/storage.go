// internal/app/features/dashboard/storage.go
package dashboard

import (
	"math"
	"net/http"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/docker/go-units"
)

type storageResponse struct {
	Used       int64   `json:"used"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	UsedHuman  string  `json:"usedHuman"`
	TotalHuman string  `json:"totalHuman"`
}

// ServeStorage reports how much of the quota the caller's uploads occupy.
// GET /storage
func (h *Handler) ServeStorage(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "storage usage")
	defer cancel()

	used, err := h.Blobs.Usage(ctx, blobstore.OwnerPrefix(u.ID))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "storage usage failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, usage(used, h.Quota))
}

func usage(used, total int64) storageResponse {
	pct := 0.0
	if total > 0 {
		pct = math.Round(float64(used)/float64(total)*10000) / 100
	}
	return storageResponse{
		Used:       used,
		Total:      total,
		Percentage: pct,
		UsedHuman:  units.BytesSize(float64(used)),
		TotalHuman: units.BytesSize(float64(total)),
	}
}
