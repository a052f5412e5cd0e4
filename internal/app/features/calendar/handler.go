// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventStore is implemented by eventstore.Store (and memstore.Events).
type EventStore interface {
	Create(ctx context.Context, e models.Event) (models.Event, error)
	Get(ctx context.Context, userID string, id primitive.ObjectID) (models.Event, error)
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)
	Upcoming(ctx context.Context, userID string, from, to time.Time, limit int64) ([]models.Event, error)
}

// ReminderStore is the notification persistence used for reminders.
type ReminderStore interface {
	Insert(ctx context.Context, n models.Notification) (models.Notification, error)
	DeleteForEvent(ctx context.Context, userID string, eventID primitive.ObjectID) (int64, error)
}

// Handler owns the /events (and /calendar) endpoints.
type Handler struct {
	Events    EventStore
	Reminders ReminderStore
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func NewHandler(events EventStore, reminders ReminderStore, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:    events,
		Reminders: reminders,
		Log:       logger,
		ErrLog:    errLog,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
