// internal/app/features/tags/handler.go
package tags

import (
	"context"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is implemented by tagstore.Store and memstore.Tags.
type Store interface {
	List(ctx context.Context, userID string) ([]models.Tag, error)
	Create(ctx context.Context, t models.Tag) (models.Tag, error)
	Update(ctx context.Context, userID string, id primitive.ObjectID, name, color string) (models.Tag, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

// Handler owns the /tags endpoints.
type Handler struct {
	Tags   Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(tags Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tags:   tags,
		Log:    logger,
		ErrLog: errLog,
	}
}
