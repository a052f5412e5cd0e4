package groups_test

import (
	"bufio"
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/features/groups"
	"github.com/dalemusser/studypal/internal/app/store/memstore"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/ratelimit"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/studypal/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fixture struct {
	router        http.Handler
	bus           *pubsub.Memory
	blobs         *blobstore.Memory
	notifications *memstore.Notifications
}

func newFixture(t *testing.T, chatLimit int) fixture {
	t.Helper()
	return newFixtureWithQuota(t, chatLimit, 0)
}

func newFixtureWithQuota(t *testing.T, chatLimit int, quota int64) fixture {
	t.Helper()
	logger := zap.NewNop()
	f := fixture{
		bus:           pubsub.NewMemory(),
		blobs:         blobstore.NewMemory(),
		notifications: memstore.NewNotifications(),
	}
	d := groups.Deps{
		Groups:        memstore.NewGroups(),
		Members:       memstore.NewMemberships(),
		Messages:      memstore.NewMessages(),
		Files:         memstore.NewGroupFiles(),
		Notifications: f.notifications,
		Blobs:         f.blobs,
		Bus:           f.bus,
		MaxUpload:     1 << 20,
		Quota:         quota,
	}
	if chatLimit > 0 {
		d.ChatLimiter = ratelimit.New(chatLimit, time.Minute)
		t.Cleanup(d.ChatLimiter.Stop)
	}
	h := groups.NewHandler(d, uierrors.NewErrorLogger(logger), logger)

	r := chi.NewRouter()
	r.Mount("/groups", groups.Routes(h, testutil.NewSessionManager(t)))
	f.router = r
	return f
}

func (f fixture) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type groupJSON struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OwnerID      string `json:"ownerId"`
	IsPrivate    bool   `json:"isPrivate"`
	MemberCount  int64  `json:"memberCount"`
	MessageCount int64  `json:"messageCount"`
	IsMember     bool   `json:"isMember"`
}

func (f fixture) createGroup(t *testing.T, owner testutil.TestUser, name string, private bool) groupJSON {
	t.Helper()
	rec := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/groups", map[string]any{
		"name": name, "description": "Weekly review for " + name, "isPrivate": private,
	}, owner))
	rec.AssertStatus(t, http.StatusCreated)
	var g groupJSON
	rec.DecodeJSON(t, &g)
	return g
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, 0)
	rec := f.do(testutil.NewJSONRequest(t, http.MethodPost, "/groups", map[string]any{"name": "  "}, testutil.Student()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestList_VisibilityAndCounts(t *testing.T) {
	f := newFixture(t, 0)
	owner, other := testutil.Student(), testutil.Student()

	public := f.createGroup(t, owner, "Organic Chemistry", false)
	f.createGroup(t, owner, "Secret Society", true)

	if g := public; g.OwnerID != owner.ID || g.MemberCount != 1 || !g.IsMember {
		t.Errorf("created = %+v", g)
	}

	var list []groupJSON
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/groups", owner)).DecodeJSON(t, &list)
	if len(list) != 2 {
		t.Fatalf("owner sees %d groups, want 2", len(list))
	}

	list = nil
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/groups", other)).DecodeJSON(t, &list)
	if len(list) != 1 || list[0].Name != "Organic Chemistry" || list[0].IsMember {
		t.Fatalf("other sees %+v, want only the public group", list)
	}

	list = nil
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/groups?query=CHEM", other)).DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Errorf("query matched %d groups, want 1", len(list))
	}

	list = nil
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, "/groups?query=physics", other)).DecodeJSON(t, &list)
	if len(list) != 0 {
		t.Errorf("query matched %d groups, want 0", len(list))
	}
}

func TestJoin(t *testing.T) {
	f := newFixture(t, 0)
	owner, joiner := testutil.Student(), testutil.Student()
	public := f.createGroup(t, owner, "Calculus", false)
	private := f.createGroup(t, owner, "Invite Only", true)

	msgs, cancel, _ := f.bus.Subscribe(context.Background(), pubsub.UserChannel(owner.ID))
	defer cancel()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown group", "/groups/000000000000000000000000/join", http.StatusNotFound},
		{"malformed id", "/groups/xyz/join", http.StatusNotFound},
		{"private group", "/groups/" + private.ID + "/join", http.StatusForbidden},
		{"joined", "/groups/" + public.ID + "/join", http.StatusOK},
		{"already member", "/groups/" + public.ID + "/join", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(testutil.NewAuthenticatedRequest(http.MethodPost, tt.path, joiner))
			rec.AssertStatus(t, tt.want)
		})
	}

	all := f.notifications.All()
	if len(all) != 1 {
		t.Fatalf("got %d notifications, want 1", len(all))
	}
	n := all[0]
	if n.UserID != owner.ID || n.Type != models.NotificationGroupJoin || n.DeliveredAt == nil {
		t.Errorf("notification = %+v", n)
	}

	select {
	case m := <-msgs:
		if m.Event != pubsub.EventNotification {
			t.Errorf("event = %q", m.Event)
		}
	case <-time.After(time.Second):
		t.Error("owner was not notified on the user channel")
	}
}

func TestMessages_MembersOnly(t *testing.T) {
	f := newFixture(t, 0)
	owner, outsider := testutil.Student(), testutil.Student()
	g := f.createGroup(t, owner, "Physics", false)
	path := "/groups/" + g.ID + "/messages"

	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, path, outsider)).AssertStatus(t, http.StatusForbidden)
	f.do(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "hi"}, outsider)).AssertStatus(t, http.StatusForbidden)

	msgs, cancel, _ := f.bus.Subscribe(context.Background(), pubsub.GroupChannel(g.ID))
	defer cancel()

	rec := f.do(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "<b>Quiz</b> tomorrow"}, owner))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"content":"Quiz tomorrow"`)

	select {
	case m := <-msgs:
		if m.Event != pubsub.EventNewMessage || !strings.Contains(string(m.Data), "Quiz tomorrow") {
			t.Errorf("published %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not published")
	}

	f.do(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "<i></i>"}, owner)).AssertStatus(t, http.StatusBadRequest)

	var history []models.GroupMessage
	rec = f.do(testutil.NewAuthenticatedRequest(http.MethodGet, path, owner))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &history)
	if len(history) != 1 || history[0].UserID != owner.ID {
		t.Errorf("history = %+v", history)
	}
}

func TestMessages_RateLimited(t *testing.T) {
	f := newFixture(t, 2)
	owner := testutil.Student()
	g := f.createGroup(t, owner, "History", false)
	path := "/groups/" + g.ID + "/messages"

	for i := 0; i < 2; i++ {
		f.do(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "ok"}, owner)).AssertStatus(t, http.StatusCreated)
	}
	f.do(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"content": "spam"}, owner)).AssertStatus(t, http.StatusTooManyRequests)
}

func TestStream_RelaysGroupMessages(t *testing.T) {
	f := newFixture(t, 0)
	owner := testutil.Student()
	g := f.createGroup(t, owner, "Streaming", false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.router.ServeHTTP(w, testutil.WithUser(r, owner))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/groups/"+g.ID+"/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	lines.Scan() // ": connected"

	_ = f.bus.Publish(ctx, pubsub.GroupChannel(g.ID), pubsub.EventNewMessage, map[string]string{"content": "live"})

	var event, data string
	for lines.Scan() {
		line := lines.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
		if data != "" {
			break
		}
	}
	if event != pubsub.EventNewMessage || !strings.Contains(data, "live") {
		t.Errorf("event=%q data=%q", event, data)
	}
}

func uploadRequest(t *testing.T, user testutil.TestUser, path, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testutil.WithUser(req, user)
}

func TestFiles_ShareAndDelete(t *testing.T) {
	f := newFixture(t, 0)
	owner, member, outsider := testutil.Student(), testutil.Student(), testutil.Student()
	g := f.createGroup(t, owner, "Biology", false)
	f.do(testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/"+g.ID+"/join", member)).AssertStatus(t, http.StatusOK)
	base := "/groups/" + g.ID + "/files"

	f.do(uploadRequest(t, outsider, base, "x.pdf", "nope")).AssertStatus(t, http.StatusForbidden)

	rec := f.do(uploadRequest(t, member, base, "cells.pdf", "%PDF-1.4"))
	rec.AssertStatus(t, http.StatusCreated)
	var gf models.GroupFile
	rec.DecodeJSON(t, &gf)
	if !f.blobs.Has(gf.FileID) || gf.UploaderID != member.ID {
		t.Fatalf("shared file = %+v", gf)
	}

	var list []models.GroupFile
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, base, owner)).DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Fatalf("listed %d files, want 1", len(list))
	}

	rec = f.do(testutil.NewAuthenticatedRequest(http.MethodGet, base+"/"+gf.ID.Hex(), owner))
	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("download body = %q", rec.Body.String())
	}

	// a second member who did not upload it may not delete it
	third := testutil.Student()
	f.do(testutil.NewAuthenticatedRequest(http.MethodPost, "/groups/"+g.ID+"/join", third)).AssertStatus(t, http.StatusOK)
	f.do(testutil.NewAuthenticatedRequest(http.MethodDelete, base+"/"+gf.ID.Hex(), third)).AssertStatus(t, http.StatusForbidden)

	f.do(testutil.NewAuthenticatedRequest(http.MethodDelete, base+"/"+gf.ID.Hex(), owner)).AssertStatus(t, http.StatusNoContent)
	if f.blobs.Has(gf.FileID) {
		t.Error("blob should be removed with the record")
	}
	f.do(testutil.NewAuthenticatedRequest(http.MethodDelete, base+"/"+gf.ID.Hex(), owner)).AssertStatus(t, http.StatusNotFound)
}

func TestFiles_KeyedOutsidePersonalNamespace(t *testing.T) {
	f := newFixture(t, 0)
	owner := testutil.Student()
	g := f.createGroup(t, owner, "Chemistry", false)

	rec := f.do(uploadRequest(t, owner, "/groups/"+g.ID+"/files", "lab.pdf", "%PDF-1.4"))
	rec.AssertStatus(t, http.StatusCreated)
	var gf models.GroupFile
	rec.DecodeJSON(t, &gf)

	if want := blobstore.OwnerPrefix(owner.ID) + "groups/" + g.ID + "/"; !strings.HasPrefix(gf.FileID, want) {
		t.Errorf("file id %q, want prefix %q", gf.FileID, want)
	}
	if blobstore.OwnedBy(gf.FileID, owner.ID) {
		t.Error("group file must not be addressable as a personal file")
	}
}

func TestFiles_QuotaCountsGroupUploads(t *testing.T) {
	f := newFixtureWithQuota(t, 0, 10)
	owner := testutil.Student()
	g := f.createGroup(t, owner, "Physics", false)
	base := "/groups/" + g.ID + "/files"

	if err := f.blobs.Put(context.Background(), blobstore.NewKey(owner.ID, "mine.pdf"), strings.NewReader("1234"), 4, "application/pdf"); err != nil {
		t.Fatal(err)
	}

	f.do(uploadRequest(t, owner, base, "a.pdf", "12345")).AssertStatus(t, http.StatusCreated)

	rec := f.do(uploadRequest(t, owner, base, "b.pdf", "12"))
	rec.AssertStatus(t, http.StatusRequestEntityTooLarge)
	rec.AssertContains(t, "Storage limit reached.")

	var list []models.GroupFile
	f.do(testutil.NewAuthenticatedRequest(http.MethodGet, base, owner)).DecodeJSON(t, &list)
	if len(list) != 1 {
		t.Errorf("listed %d files, want 1", len(list))
	}
}
