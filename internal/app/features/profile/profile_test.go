package profile_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/features/profile"
	"github.com/dalemusser/studypal/internal/app/store/memstore"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type profileJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Major        string `json:"major"`
	AcademicYear string `json:"academicYear"`
	Tags         []struct {
		Name string `json:"name"`
	} `json:"tags"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	users, tags := memstore.NewUsers(), memstore.NewTags()
	prov := &profiles.Provisioner{Users: users, Tags: tags, Log: logger}
	h := profile.NewHandler(users, tags, prov, uierrors.NewErrorLogger(logger), logger)

	sm := testutil.NewSessionManager(t)
	r := chi.NewRouter()
	r.Mount("/user", profile.Routes(h, sm))
	r.Mount("/onboarding", profile.OnboardingRoutes(h, sm))
	return r
}

func do(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServeProfile_NotProvisioned(t *testing.T) {
	router := newRouter(t)
	rec := do(router, testutil.NewAuthenticatedRequest(http.MethodGet, "/user", testutil.Student()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	router := newRouter(t)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestOnboarding(t *testing.T) {
	router := newRouter(t)
	user := testutil.Student()

	tests := []struct {
		name string
		body any
		want int
	}{
		{"unknown major", map[string]string{"major": "history", "academicYear": "junior"}, http.StatusBadRequest},
		{"missing year", map[string]string{"major": "cs"}, http.StatusBadRequest},
		{"created", map[string]string{"major": "CS", "academicYear": "Junior"}, http.StatusCreated},
		{"already onboarded", map[string]string{"major": "biology", "academicYear": "senior"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/onboarding", tt.body, user))
			rec.AssertStatus(t, tt.want)
		})
	}

	rec := do(router, testutil.NewAuthenticatedRequest(http.MethodGet, "/user", user))
	rec.AssertStatus(t, http.StatusOK)

	var got profileJSON
	rec.DecodeJSON(t, &got)
	if got.ID != user.ID || got.Major != "cs" || got.AcademicYear != "junior" {
		t.Errorf("profile = %+v", got)
	}
	if got.Name != user.Name {
		t.Errorf("name = %q, want %q", got.Name, user.Name)
	}
	if len(got.Tags) != 4 {
		t.Errorf("got %d default tags, want 4", len(got.Tags))
	}
}
