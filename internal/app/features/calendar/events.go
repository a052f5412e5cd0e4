// internal/app/features/calendar/events.go
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	eventstore "github.com/dalemusser/studypal/internal/app/store/events"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/docker/go-units"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	upcomingLimit  = 5
)

// ServeMonth returns the caller's events overlapping a month plus the most
// urgent events of the next seven days.
// GET /events?month=&year=
func (h *Handler) ServeMonth(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	now := h.now()

	from, to, err := MonthRange(r.URL.Query(), now)
	if err != nil {
		h.ErrLog.Write(w, r, "parse month failed", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "load calendar")
	defer cancel()

	events, err := h.Events.ListRange(ctx, u.ID, from, to)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events failed", err)
		return
	}
	upcoming, err := h.Events.Upcoming(ctx, u.ID, now, now.Add(upcomingWindow), upcomingLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list upcoming events failed", err)
		return
	}

	if events == nil {
		events = []models.Event{}
	}
	if upcoming == nil {
		upcoming = []models.Event{}
	}
	uierrors.WriteJSON(w, http.StatusOK, calendarResponse{Events: events, UpcomingEvents: upcoming})
}

// HandleCreate stores an event and schedules one reminder notification per
// offset. Reminder failures are logged and do not undo the event.
// POST /events
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in EventInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode event failed", err, "Invalid JSON body.")
		return
	}
	e, err := ValidateEvent(in, u.ID)
	if err != nil {
		h.ErrLog.Write(w, r, "validate event failed", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create event")
	defer cancel()

	e, err = h.Events.Create(ctx, e)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "insert event failed", err)
		return
	}

	if failed := h.scheduleReminders(ctx, e); failed > 0 {
		h.Log.Warn("event created with missing reminders",
			zap.String("event_id", e.ID.Hex()),
			zap.Int("failed", failed),
			zap.Int("requested", len(e.Reminders)))
	}

	h.Log.Info("event created", zap.String("user_id", u.ID), zap.String("event_id", e.ID.Hex()))
	uierrors.WriteJSON(w, http.StatusCreated, e)
}

// scheduleReminders inserts the reminders of e concurrently and returns how
// many failed.
func (h *Handler) scheduleReminders(ctx context.Context, e models.Event) int {
	if len(e.Reminders) == 0 {
		return 0
	}
	errs := make([]error, len(e.Reminders))

	var g errgroup.Group
	for i, minutes := range e.Reminders {
		g.Go(func() error {
			_, err := h.Reminders.Insert(ctx, reminderFor(e, minutes))
			if err != nil {
				h.Log.Warn("reminder insert failed",
					zap.String("event_id", e.ID.Hex()),
					zap.Int("minutes_before", minutes),
					zap.Error(err))
			}
			errs[i] = err
			return err
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return failed
}

func reminderFor(e models.Event, minutes int) models.Notification {
	lead := time.Duration(minutes) * time.Minute
	eventID := e.ID
	return models.Notification{
		UserID:       e.UserID,
		Type:         models.NotificationEventReminder,
		Title:        "Reminder: " + e.Title,
		Content:      fmt.Sprintf("%s starts in %s.", e.Title, strings.ToLower(units.HumanDuration(lead))),
		EventID:      &eventID,
		ScheduledFor: e.StartDate.Add(-lead),
	}
}

// GET /events/{id}
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get event")
	defer cancel()

	e, err := h.Events.Get(ctx, u.ID, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		uierrors.NotFound(w, "Event not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get event failed", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, e)
}

// HandleDelete removes an event and its pending reminders.
// DELETE /events/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete event")
	defer cancel()

	err := h.Events.Delete(ctx, u.ID, id)
	if errors.Is(err, eventstore.ErrNotFound) {
		uierrors.NotFound(w, "Event not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete event failed", err)
		return
	}

	if _, err := h.Reminders.DeleteForEvent(ctx, u.ID, id); err != nil {
		h.Log.Warn("delete pending reminders failed", zap.String("event_id", id.Hex()), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.NotFound(w, "Event not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
