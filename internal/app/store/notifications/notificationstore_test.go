package notificationstore_test

import (
	"errors"
	"testing"
	"time"

	notificationstore "github.com/dalemusser/studypal/internal/app/store/notifications"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/studypal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_ClaimDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	eventID := primitive.NewObjectID()
	for _, at := range []time.Time{now.Add(-time.Minute), now.Add(time.Hour)} {
		if _, err := store.Insert(ctx, models.Notification{
			UserID: "u1", Type: models.NotificationEventReminder, Title: "Reminder",
			EventID: &eventID, ScheduledFor: at,
		}); err != nil {
			t.Fatal(err)
		}
	}

	n, ok, err := store.ClaimDue(ctx, now)
	if err != nil || !ok {
		t.Fatalf("ClaimDue = %v, %v; want a due notification", ok, err)
	}
	if n.DeliveredAt == nil {
		t.Error("claimed notification has no DeliveredAt")
	}

	if _, ok, _ := store.ClaimDue(ctx, now); ok {
		t.Error("second ClaimDue returned a notification; the future one is not due")
	}

	list, err := store.List(ctx, "u1", 50)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d items, %v; want 1 delivered", len(list), err)
	}

	deleted, err := store.DeleteForEvent(ctx, "u1", eventID)
	if err != nil || deleted != 1 {
		t.Errorf("DeleteForEvent = %d, %v; want only the pending reminder removed", deleted, err)
	}
}

func TestStore_MarkReadOwnerScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	n, err := store.Insert(ctx, models.Notification{UserID: "u1", Type: models.NotificationGroupJoin, ScheduledFor: now, DeliveredAt: &now})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MarkRead(ctx, "u2", n.ID); !errors.Is(err, notificationstore.ErrNotFound) {
		t.Errorf("MarkRead by other user err = %v, want ErrNotFound", err)
	}
	if err := store.MarkRead(ctx, "u1", n.ID); err != nil {
		t.Errorf("MarkRead: %v", err)
	}
}
