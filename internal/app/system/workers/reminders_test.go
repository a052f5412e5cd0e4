package workers

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/studypal/internal/app/store/memstore"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

func TestReminderDispatcher_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	store := memstore.NewNotifications()
	for _, n := range []models.Notification{
		{UserID: "u1", Title: "due", Type: models.NotificationEventReminder, ScheduledFor: now.Add(-time.Minute)},
		{UserID: "u1", Title: "due now", Type: models.NotificationEventReminder, ScheduledFor: now},
		{UserID: "u1", Title: "later", Type: models.NotificationEventReminder, ScheduledFor: now.Add(time.Hour)},
	} {
		if _, err := store.Insert(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	bus := pubsub.NewMemory()
	defer bus.Close()
	msgs, cancel, err := bus.Subscribe(ctx, pubsub.UserChannel("u1"))
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	w := NewReminderDispatcher(store, bus, nil, zap.NewNop(), time.Minute)
	w.now = func() time.Time { return now }

	if got := w.Sweep(ctx); got != 2 {
		t.Fatalf("Sweep = %d, want 2", got)
	}
	for i := 0; i < 2; i++ {
		select {
		case m := <-msgs:
			if m.Event != pubsub.EventNotification {
				t.Errorf("event = %q", m.Event)
			}
		case <-time.After(time.Second):
			t.Fatalf("reminder %d not published", i)
		}
	}

	if got := w.Sweep(ctx); got != 0 {
		t.Errorf("second Sweep = %d, want 0; reminders must be delivered once", got)
	}

	var pending int
	for _, n := range store.All() {
		if n.DeliveredAt == nil {
			pending++
		}
	}
	if pending != 1 {
		t.Errorf("pending = %d, want 1", pending)
	}
}

func TestReminderDispatcher_StartStop(t *testing.T) {
	w := NewReminderDispatcher(memstore.NewNotifications(), pubsub.NewMemory(), nil, zap.NewNop(), 10*time.Millisecond)
	w.Start()
	time.Sleep(30 * time.Millisecond)
	w.Stop()
}
