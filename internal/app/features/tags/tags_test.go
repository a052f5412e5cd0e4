package tags_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/features/tags"
	"github.com/dalemusser/studypal/internal/app/store/memstore"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/studypal/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *memstore.Tags) {
	t.Helper()
	logger := zap.NewNop()
	store := memstore.NewTags()
	h := tags.NewHandler(store, uierrors.NewErrorLogger(logger), logger)

	r := chi.NewRouter()
	r.Mount("/tags", tags.Routes(h, testutil.NewSessionManager(t)))
	return r, store
}

func do(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestList_OrderedByCount(t *testing.T) {
	router, store := newRouter(t)
	user := testutil.Student()
	ctx := t.Context()

	_ = store.Seed(ctx, user.ID, models.DefaultTags)
	_ = store.Adjust(ctx, user.ID, []string{"Research"}, 2)
	_ = store.Adjust(ctx, user.ID, []string{"Exam"}, 1)
	_ = store.Seed(ctx, "someone-else", []string{"Private"})

	rec := do(router, testutil.NewAuthenticatedRequest(http.MethodGet, "/tags", user))
	rec.AssertStatus(t, http.StatusOK)

	var got []models.Tag
	rec.DecodeJSON(t, &got)
	want := []string{"Research", "Exam", "Homework", "Notes"}
	if len(got) != len(want) {
		t.Fatalf("got %d tags, want %d", len(got), len(want))
	}
	for i, tag := range got {
		if tag.Name != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tag.Name, want[i])
		}
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	router, _ := newRouter(t)
	rec := do(router, testutil.NewAuthenticatedRequest(http.MethodGet, "/tags", testutil.Student()))
	rec.AssertStatus(t, http.StatusOK)
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestCreate(t *testing.T) {
	router, _ := newRouter(t)
	user := testutil.Student()

	tests := []struct {
		name string
		body any
		want int
	}{
		{"created", map[string]string{"name": " Lab ", "color": "#22c55e"}, http.StatusCreated},
		{"exists", map[string]string{"name": "Lab"}, http.StatusConflict},
		{"blank name", map[string]string{"name": "  "}, http.StatusBadRequest},
		{"bad color", map[string]string{"name": "Quiz", "color": "green"}, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/tags", tt.body, user))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestUpdateAndDelete_OwnerScoped(t *testing.T) {
	router, _ := newRouter(t)
	owner, other := testutil.Student(), testutil.Student()

	rec := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/tags", map[string]string{"name": "Exam"}, owner))
	rec.AssertStatus(t, http.StatusCreated)
	var tag models.Tag
	rec.DecodeJSON(t, &tag)
	path := "/tags/" + tag.ID.Hex()

	rec = do(router, testutil.NewJSONRequest(t, http.MethodPatch, path, map[string]string{"color": "#ef4444"}, other))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = do(router, testutil.NewJSONRequest(t, http.MethodPatch, path, map[string]string{}, owner))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = do(router, testutil.NewJSONRequest(t, http.MethodPatch, path, map[string]string{"name": "Exams", "color": "#ef4444"}, owner))
	rec.AssertStatus(t, http.StatusOK)
	var updated models.Tag
	rec.DecodeJSON(t, &updated)
	if updated.Name != "Exams" || updated.Color != "#ef4444" {
		t.Errorf("updated = %+v", updated)
	}

	rec = do(router, testutil.NewAuthenticatedRequest(http.MethodDelete, path, other))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = do(router, testutil.NewAuthenticatedRequest(http.MethodDelete, path, owner))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = do(router, testutil.NewAuthenticatedRequest(http.MethodDelete, "/tags/not-an-id", owner))
	rec.AssertStatus(t, http.StatusNotFound)
}
