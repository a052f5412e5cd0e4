// internal/app/features/notifications/handler.go
package notifications

import (
	"context"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is implemented by notificationstore.Store.
type Store interface {
	List(ctx context.Context, userID string, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error
}

type Handler struct {
	Notifications Store
	Log           *zap.Logger
	ErrLog        *uierrors.ErrorLogger
}

func NewHandler(store Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Notifications: store,
		Log:           logger,
		ErrLog:        errLog,
	}
}
