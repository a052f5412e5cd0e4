// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

// UserReader loads a stored profile.
type UserReader interface {
	Get(ctx context.Context, id string) (models.User, error)
}

// TagLister lists a user's tags.
type TagLister interface {
	List(ctx context.Context, userID string) ([]models.Tag, error)
}

// Handler owns the /user and /onboarding endpoints.
type Handler struct {
	Users       UserReader
	Tags        TagLister
	Provisioner *profiles.Provisioner
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

func NewHandler(users UserReader, tags TagLister, prov *profiles.Provisioner, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Tags:        tags,
		Provisioner: prov,
		Log:         logger,
		ErrLog:      errLog,
	}
}
