package materials

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studypal/internal/app/store/memstore"
	"github.com/dalemusser/studypal/internal/app/store/queries/materialfilter"
	"github.com/dalemusser/studypal/internal/app/system/activity"
	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

type serviceFixture struct {
	svc      *Service
	store    *memstore.Materials
	users    *memstore.Users
	tags     *memstore.Tags
	blobs    *blobstore.Memory
	activity *activity.Recorder
	clock    time.Time
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		store:    memstore.NewMaterials(),
		users:    memstore.NewUsers(),
		tags:     memstore.NewTags(),
		blobs:    blobstore.NewMemory(),
		activity: &activity.Recorder{},
		clock:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = &Service{
		Materials: f.store,
		Tags:      f.tags,
		Profiles:  &profiles.Provisioner{Users: f.users, Tags: f.tags, Log: zap.NewNop()},
		Blobs:     f.blobs,
		Activity:  f.activity,
		Log:       zap.NewNop(),
		Now: func() time.Time {
			f.clock = f.clock.Add(time.Minute)
			return f.clock
		},
	}
	return f
}

var ann = profiles.Identity{ID: "u1", Name: "Ann", Email: "ann@example.com"}

func note(title, priority string, tags ...string) Input {
	return Input{Title: title, Type: "note", Content: "content of " + title, Priority: priority, Tags: tags}
}

func TestService_CreateDuplicateTitle(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, ann, note("Week 1", "low")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.Create(ctx, ann, note("Week 1", "high"))
	if !errors.Is(err, apierr.ErrConflict) {
		t.Errorf("second create err = %v, want conflict", err)
	}

	// the title belongs to u1 only
	if _, err := f.svc.Create(ctx, profiles.Identity{ID: "u2"}, note("Week 1", "low")); err != nil {
		t.Errorf("other owner create: %v", err)
	}
}

func TestService_CreateDuplicateFile(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	if err := f.blobs.Put(ctx, "u1/a.pdf", strings.NewReader("%PDF"), 4, "application/pdf"); err != nil {
		t.Fatal(err)
	}
	pdf := Input{Title: "Slides", Type: "pdf", FileID: "u1/a.pdf", Priority: "low"}

	if _, err := f.svc.Create(ctx, ann, pdf); err != nil {
		t.Fatal(err)
	}
	pdf.Title = "Slides (copy)"
	if _, err := f.svc.Create(ctx, ann, pdf); !errors.Is(err, apierr.ErrConflict) {
		t.Errorf("same fileId err = %v, want conflict", err)
	}
}

func TestService_CreateSideEffects(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	m, err := f.svc.Create(ctx, ann, note("Mitosis", "high", "Biology", "Exam"))
	if err != nil {
		t.Fatal(err)
	}

	u, err := f.users.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("profile not provisioned: %v", err)
	}
	if u.Major != models.PlaceholderMajor {
		t.Errorf("Major = %q, want placeholder", u.Major)
	}

	list, _ := f.tags.List(ctx, "u1")
	counts := map[string]int64{}
	for _, tg := range list {
		counts[tg.Name] = tg.Count
	}
	if counts["Biology"] != 1 || counts["Exam"] != 1 || counts["Homework"] != 0 {
		t.Errorf("tag counts = %v", counts)
	}

	evs := f.activity.Events()
	if len(evs) != 1 || evs[0].Type != activity.MaterialCreated || evs[0].MaterialID != m.ID.Hex() {
		t.Errorf("activity = %+v", evs)
	}
}

func TestService_ListTypeFilterIsOwnerScoped(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, _ = f.svc.Create(ctx, ann, note("Mine", "low"))
	_, _ = f.svc.Create(ctx, ann, Input{Title: "My link", Type: "link", URL: "https://a.example", Priority: "low"})
	_, _ = f.svc.Create(ctx, profiles.Identity{ID: "u2"}, note("Theirs", "low"))

	got, err := f.svc.List(ctx, "u1", materialfilter.Filter{Type: "note"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Mine" {
		t.Errorf("List(type=note) = %v, want only u1's note", titles(got))
	}
	for _, m := range got {
		if m.OwnerID != "u1" || m.Type() != "note" {
			t.Errorf("unexpected material %+v", m)
		}
	}
}

func TestService_ListPrioritySort(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	_, _ = f.svc.Create(ctx, ann, note("A", "low"))
	_, _ = f.svc.Create(ctx, ann, note("B", "high"))
	_, _ = f.svc.Create(ctx, ann, note("C", "medium"))
	_, _ = f.svc.Create(ctx, ann, note("D", "high"))

	got, _ := f.svc.List(ctx, "u1", materialfilter.Filter{Sort: "priority"})
	want := []string{"D", "B", "C", "A"}
	if g := titles(got); !equal(g, want) {
		t.Errorf("priority sort = %v, want %v", g, want)
	}
}

func TestService_ListNewestDefault(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	// A created before B: the default order is [B, A]
	_, _ = f.svc.Create(ctx, ann, note("A", "low"))
	_, _ = f.svc.Create(ctx, ann, note("B", "low"))

	got, _ := f.svc.List(ctx, "u1", materialfilter.Filter{})
	if g := titles(got); !equal(g, []string{"B", "A"}) {
		t.Errorf("default sort = %v, want [B A]", g)
	}
	got, _ = f.svc.List(ctx, "u1", materialfilter.Filter{Sort: "oldest"})
	if g := titles(got); !equal(g, []string{"A", "B"}) {
		t.Errorf("oldest sort = %v, want [A B]", g)
	}
}

func TestService_ListEmptyIsNotNil(t *testing.T) {
	f := newServiceFixture()
	got, err := f.svc.List(context.Background(), "nobody", materialfilter.Filter{Tag: "none"})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("List = %#v, %v; want empty slice", got, err)
	}
}

func TestService_DeleteOtherOwnerIsNotFound(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	m, _ := f.svc.Create(ctx, ann, note("Private", "low"))
	if err := f.svc.Delete(ctx, "u2", m.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Errorf("Delete by u2 err = %v, want not found", err)
	}
	if _, err := f.svc.Get(ctx, "u1", m.ID); err != nil {
		t.Errorf("material should survive: %v", err)
	}
}

func TestService_DeleteRemovesBlobBestEffort(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	key := blobstore.NewKey("u1", "notes.pdf")
	if err := f.blobs.Put(ctx, key, strings.NewReader("%PDF"), 4, "application/pdf"); err != nil {
		t.Fatal(err)
	}
	m, err := f.svc.Create(ctx, ann, Input{Title: "Notes", Type: "pdf", FileID: key, Priority: "low", Tags: TagList{"Exam"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Delete(ctx, "u1", m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if f.blobs.Has(key) {
		t.Error("blob should be deleted")
	}

	list, _ := f.tags.List(ctx, "u1")
	for _, tg := range list {
		if tg.Name == "Exam" && tg.Count != 0 {
			t.Errorf("Exam count = %d after delete, want 0", tg.Count)
		}
	}

	// a failing blob store does not block record deletion
	key2 := blobstore.NewKey("u1", "b.pdf")
	_ = f.blobs.Put(ctx, key2, strings.NewReader("%PDF"), 4, "application/pdf")
	m2, err := f.svc.Create(ctx, ann, Input{Title: "Other", Type: "pdf", FileID: key2, Priority: "low"})
	if err != nil {
		t.Fatal(err)
	}
	f.blobs.FailDelete = errors.New("storage offline")
	if err := f.svc.Delete(ctx, "u1", m2.ID); err != nil {
		t.Errorf("Delete with failing blob store: %v", err)
	}
	if _, err := f.svc.Get(ctx, "u1", m2.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
}

func TestService_CreatePDFUsesStoredBlob(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	key := blobstore.NewKey("u1", "scan.pdf")
	if err := f.blobs.Put(ctx, key, strings.NewReader("%PDF-1.7"), 8, "application/pdf"); err != nil {
		t.Fatal(err)
	}
	m, err := f.svc.Create(ctx, ann, Input{Title: "Scan", Type: "pdf", FileID: key, FileSize: 999999999, Priority: "low"})
	if err != nil {
		t.Fatal(err)
	}
	if m.FileSize() != 8 {
		t.Errorf("FileSize = %d, want size of stored blob 8", m.FileSize())
	}
}

func TestService_CreatePDFRejectsUnusableFile(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	groupKey := blobstore.NewGroupKey("u1", "64b000000000000000000001", "shared.pdf")
	if err := f.blobs.Put(ctx, groupKey, strings.NewReader("%PDF"), 4, "application/pdf"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		fileID string
	}{
		{"missing blob", "u1/does-not-exist.pdf"},
		{"group file", groupKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, ann, Input{Title: "Borrowed " + tt.name, Type: "pdf", FileID: tt.fileID, Priority: "low"})
			if !errors.Is(err, apierr.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}

	list, _ := f.svc.List(ctx, "u1", materialfilter.Filter{})
	if len(list) != 0 {
		t.Errorf("stored %d materials, want 0", len(list))
	}
	if !f.blobs.Has(groupKey) {
		t.Error("group blob must be untouched")
	}
}

func TestService_StoreFailureIsDependency(t *testing.T) {
	f := newServiceFixture()
	f.store.FailCreate = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), ann, note("X", "low"))
	if apierr.KindOf(err) != apierr.KindDependency {
		t.Errorf("kind = %v, want dependency", apierr.KindOf(err))
	}
}

func titles(ms []models.Material) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
