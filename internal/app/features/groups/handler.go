// internal/app/features/groups/handler.go
package groups

import (
	"context"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/metrics"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/ratelimit"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupStore is implemented by groupstore.Store.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.StudyGroup, error)
	Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error)
	Search(ctx context.Context, memberOf []primitive.ObjectID, query string) ([]models.StudyGroup, error)
}

// MembershipStore is implemented by membershipstore.Store.
type MembershipStore interface {
	Add(ctx context.Context, groupID primitive.ObjectID, userID, role string) (models.GroupMembership, error)
	Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.GroupMembership, error)
	GroupIDsForUser(ctx context.Context, userID string) ([]primitive.ObjectID, error)
	CountsByGroup(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

// MessageStore is implemented by messagestore.Store.
type MessageStore interface {
	Insert(ctx context.Context, m models.GroupMessage) (models.GroupMessage, error)
	Recent(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.GroupMessage, error)
	CountsByGroup(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

// FileStore is implemented by groupfilestore.Store.
type FileStore interface {
	Insert(ctx context.Context, f models.GroupFile) (models.GroupFile, error)
	List(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupFile, error)
	Get(ctx context.Context, groupID, id primitive.ObjectID) (models.GroupFile, error)
	Delete(ctx context.Context, groupID, id primitive.ObjectID) error
}

// NotificationStore records join notifications.
type NotificationStore interface {
	Insert(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Deps bundles the collaborators of the groups feature.
type Deps struct {
	Groups        GroupStore
	Members       MembershipStore
	Messages      MessageStore
	Files         FileStore
	Notifications NotificationStore
	Blobs         blobstore.Store
	Bus           pubsub.Bus

	// ChatLimiter throttles message posts per user; nil disables it.
	ChatLimiter *ratelimit.Limiter
	Metrics     *metrics.Metrics
	MaxUpload   int64
	// Quota caps each uploader's stored bytes; zero disables the check.
	Quota int64

	// RunTx runs fn atomically when the database supports it. Nil runs fn
	// directly.
	RunTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

// Handler owns the /groups endpoints: directory, membership, chat and
// shared files.
type Handler struct {
	Deps
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(d Deps, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Deps:   d,
		Log:    logger,
		ErrLog: errLog,
	}
}

func (h *Handler) runTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.RunTx == nil {
		return fn(ctx)
	}
	return h.RunTx(ctx, fn)
}
