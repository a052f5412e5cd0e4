package eventstore_test

import (
	"errors"
	"testing"
	"time"

	eventstore "github.com/dalemusser/studypal/internal/app/store/events"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/studypal/internal/testutil"
)

func TestStore_ListRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	endOfMarch := time.Date(2025, time.March, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	spillEnd := march.Add(2 * time.Hour)

	mk := func(title string, start time.Time, end *time.Time) {
		t.Helper()
		if _, err := store.Create(ctx, models.Event{UserID: "u1", Title: title, StartDate: start, EndDate: end, Type: "exam", Priority: "low"}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	mk("in", march.AddDate(0, 0, 10), nil)
	mk("spills in", march.Add(-2*time.Hour), &spillEnd)
	mk("before", march.AddDate(0, 0, -5), nil)
	mk("after", endOfMarch.Add(time.Second), nil)

	got, err := store.ListRange(ctx, "u1", march, endOfMarch)
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(got) != 2 || got[0].Title != "spills in" || got[1].Title != "in" {
		t.Errorf("ListRange titles = %v, want [spills in, in]", titles(got))
	}

	other, _ := store.ListRange(ctx, "u2", march, endOfMarch)
	if len(other) != 0 {
		t.Errorf("other user saw %d events", len(other))
	}
}

func TestStore_UpcomingOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, e := range []struct {
		title    string
		in       time.Duration
		priority string
	}{
		{"low soon", time.Hour, "low"},
		{"high later", 48 * time.Hour, "high"},
		{"high sooner", 24 * time.Hour, "high"},
		{"medium", 2 * time.Hour, "medium"},
		{"too far", 8 * 24 * time.Hour, "high"},
	} {
		if _, err := store.Create(ctx, models.Event{UserID: "u1", Title: e.title, StartDate: now.Add(e.in), Type: "deadline", Priority: e.priority}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Upcoming(ctx, "u1", now, now.Add(7*24*time.Hour), 5)
	if err != nil {
		t.Fatalf("Upcoming: %v", err)
	}
	want := []string{"high sooner", "high later", "medium", "low soon"}
	if g := titles(got); len(g) != len(want) {
		t.Fatalf("Upcoming = %v, want %v", g, want)
	} else {
		for i := range want {
			if g[i] != want[i] {
				t.Fatalf("Upcoming = %v, want %v", g, want)
			}
		}
	}

	n, err := store.CountStartingBetween(ctx, "u1", now, now.Add(7*24*time.Hour))
	if err != nil || n != 4 {
		t.Errorf("CountStartingBetween = %d, %v; want 4", n, err)
	}
}

func TestStore_OwnerScopedDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := eventstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, models.Event{UserID: "u1", Title: "Exam", StartDate: time.Now(), Type: "exam", Priority: "high"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "u2", e.ID); !errors.Is(err, eventstore.ErrNotFound) {
		t.Errorf("Delete by other owner err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "u1", e.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "u1", e.ID); !errors.Is(err, eventstore.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func titles(es []models.Event) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Title
	}
	return out
}
