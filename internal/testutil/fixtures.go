package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it repeatedly on the same request adds further parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test records directly into a test database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an onboarded profile.
func (f *Fixtures) CreateUser(ctx context.Context, id, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		Major:        "cs",
		AcademicYear: "junior",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a study group owned by ownerID, with the owner
// membership.
func (f *Fixtures) CreateGroup(ctx context.Context, name, ownerID string, private bool) models.StudyGroup {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.StudyGroup{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		IsPrivate: private,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	f.CreateGroupMembership(ctx, g.ID, ownerID, models.GroupRoleOwner)
	return g
}

// CreateGroupMembership inserts a membership row.
func (f *Fixtures) CreateGroupMembership(ctx context.Context, groupID primitive.ObjectID, userID, role string) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateEvent inserts an event starting at start.
func (f *Fixtures) CreateEvent(ctx context.Context, userID, title string, start time.Time, priority string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Title:        title,
		StartDate:    start.UTC(),
		Type:         models.EventTypeOther,
		Priority:     priority,
		PriorityRank: models.PriorityRank(priority),
		Reminders:    []int{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}
