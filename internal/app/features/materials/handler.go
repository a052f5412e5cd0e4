// internal/app/features/materials/handler.go
package materials

import (
	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies. Note content is the largest field.
const maxBodyBytes = 1 << 20

// Handler owns the /materials endpoints.
//
// It is constructed once at startup in bootstrap with the shared Service.
type Handler struct {
	Svc    *Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Log:    logger,
		ErrLog: errLog,
	}
}
