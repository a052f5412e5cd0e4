// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultStorageQuota is the per-user blob allowance when none is configured.
const DefaultStorageQuota int64 = 5 << 30

// MaterialCounter counts a user's materials.
type MaterialCounter interface {
	Count(ctx context.Context, ownerID string) (int64, error)
	CountSince(ctx context.Context, ownerID string, t time.Time) (int64, error)
}

// EventCounter counts events starting in a window.
type EventCounter interface {
	CountStartingBetween(ctx context.Context, userID string, from, to time.Time) (int64, error)
}

// GroupLister resolves the groups a user belongs to.
type GroupLister interface {
	GroupIDsForUser(ctx context.Context, userID string) ([]primitive.ObjectID, error)
}

// SharedFileCounter counts files other members shared into groups.
type SharedFileCounter interface {
	CountSharedWith(ctx context.Context, groupIDs []primitive.ObjectID, userID string) (int64, error)
}

// UsageReporter sums stored bytes under a key prefix.
type UsageReporter interface {
	Usage(ctx context.Context, prefix string) (int64, error)
}

// Handler owns the /stats and /storage endpoints.
type Handler struct {
	Materials   MaterialCounter
	Events      EventCounter
	Memberships GroupLister
	GroupFiles  SharedFileCounter
	Blobs       UsageReporter
	Quota       int64

	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func NewHandler(materials MaterialCounter, events EventCounter, memberships GroupLister, files SharedFileCounter,
	blobs UsageReporter, quota int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if quota <= 0 {
		quota = DefaultStorageQuota
	}
	return &Handler{
		Materials:   materials,
		Events:      events,
		Memberships: memberships,
		GroupFiles:  files,
		Blobs:       blobs,
		Quota:       quota,
		Log:         logger,
		ErrLog:      errLog,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
