// Package memstore holds in-memory implementations of the store method sets.
//
// They return the same sentinel errors as their MongoDB counterparts and are
// used by handler tests that should not depend on a running database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	eventstore "github.com/dalemusser/studypal/internal/app/store/events"
	materialstore "github.com/dalemusser/studypal/internal/app/store/materials"
	notificationstore "github.com/dalemusser/studypal/internal/app/store/notifications"
	"github.com/dalemusser/studypal/internal/app/store/queries/materialfilter"
	tagstore "github.com/dalemusser/studypal/internal/app/store/tags"
	userstore "github.com/dalemusser/studypal/internal/app/store/users"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Materials mirrors materialstore.Store.
type Materials struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Material
	// FailCreate, when set, is returned by Create.
	FailCreate error
	// FailCount, when set, is returned by Count.
	FailCount error
}

func NewMaterials() *Materials {
	return &Materials{byID: map[primitive.ObjectID]models.Material{}}
}

func (s *Materials) Create(_ context.Context, m models.Material) (models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return models.Material{}, s.FailCreate
	}
	for _, x := range s.byID {
		if x.OwnerID == m.OwnerID && text.Fold(x.Title) == text.Fold(m.Title) {
			return models.Material{}, materialstore.ErrDuplicate
		}
	}
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	s.byID[m.ID] = m
	return m, nil
}

func (s *Materials) ExistsDuplicate(_ context.Context, ownerID, title, fileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, x := range s.byID {
		if x.OwnerID != ownerID {
			continue
		}
		if text.Fold(x.Title) == text.Fold(title) || (fileID != "" && x.FileID() == fileID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Materials) List(_ context.Context, ownerID string, f materialfilter.Filter) ([]models.Material, error) {
	return f.Apply(s.owned(ownerID)), nil
}

func (s *Materials) Get(_ context.Context, ownerID string, id primitive.ObjectID) (models.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok || m.OwnerID != ownerID {
		return models.Material{}, materialstore.ErrNotFound
	}
	return m, nil
}

func (s *Materials) Delete(_ context.Context, ownerID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok || m.OwnerID != ownerID {
		return materialstore.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Materials) Count(_ context.Context, ownerID string) (int64, error) {
	if s.FailCount != nil {
		return 0, s.FailCount
	}
	return int64(len(s.owned(ownerID))), nil
}

func (s *Materials) CountSince(_ context.Context, ownerID string, t time.Time) (int64, error) {
	var n int64
	for _, m := range s.owned(ownerID) {
		if !m.CreatedAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (s *Materials) owned(ownerID string) []models.Material {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Material, 0, len(s.byID))
	for _, m := range s.byID {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out
}

// Users mirrors userstore.Store.
type Users struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}}
}

func (s *Users) Get(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (s *Users) Insert(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return models.User{}, userstore.ErrExists
	}
	now := time.Now().UTC()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	s.byID[u.ID] = u
	return u, nil
}

func (s *Users) UpdateAcademics(_ context.Context, id, major, year string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.Major, u.AcademicYear, u.UpdatedAt = major, year, time.Now().UTC()
	s.byID[id] = u
	return nil
}

// Tags mirrors tagstore.Store.
type Tags struct {
	mu   sync.Mutex
	tags []models.Tag
}

func NewTags() *Tags {
	return &Tags{}
}

func (s *Tags) List(_ context.Context, userID string) ([]models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Tag{}
	for _, t := range s.tags {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Tags) Create(_ context.Context, t models.Tag) (models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(t.UserID, t.Name) >= 0 {
		return models.Tag{}, tagstore.ErrDuplicate
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now, now
	s.tags = append(s.tags, t)
	return t, nil
}

func (s *Tags) Seed(_ context.Context, userID string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, n := range names {
		if s.find(userID, n) < 0 {
			s.tags = append(s.tags, models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: n, CreatedAt: now, UpdatedAt: now})
		}
	}
	return nil
}

func (s *Tags) Update(_ context.Context, userID string, id primitive.ObjectID, name, color string) (models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tags {
		if t.ID != id || t.UserID != userID {
			continue
		}
		if name != "" && name != t.Name {
			if s.find(userID, name) >= 0 {
				return models.Tag{}, tagstore.ErrDuplicate
			}
			t.Name = name
		}
		if color != "" {
			t.Color = color
		}
		t.UpdatedAt = time.Now().UTC()
		s.tags[i] = t
		return t, nil
	}
	return models.Tag{}, tagstore.ErrNotFound
}

func (s *Tags) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tags {
		if t.ID == id && t.UserID == userID {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return nil
		}
	}
	return tagstore.ErrNotFound
}

func (s *Tags) Adjust(_ context.Context, userID string, names []string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, n := range names {
		i := s.find(userID, n)
		switch {
		case i < 0 && delta > 0:
			s.tags = append(s.tags, models.Tag{ID: primitive.NewObjectID(), UserID: userID, Name: n, Count: delta, CreatedAt: now, UpdatedAt: now})
		case i >= 0 && s.tags[i].Count+delta >= 0:
			s.tags[i].Count += delta
			s.tags[i].UpdatedAt = now
		}
	}
	return nil
}

func (s *Tags) find(userID, name string) int {
	for i, t := range s.tags {
		if t.UserID == userID && t.Name == name {
			return i
		}
	}
	return -1
}

// Events mirrors eventstore.Store.
type Events struct {
	mu     sync.Mutex
	events []models.Event
}

func NewEvents() *Events {
	return &Events{}
}

func (s *Events) Create(_ context.Context, e models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.PriorityRank = models.PriorityRank(e.Priority)
	e.CreatedAt, e.UpdatedAt = now, now
	s.events = append(s.events, e)
	return e, nil
}

func (s *Events) Get(_ context.Context, userID string, id primitive.ObjectID) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return models.Event{}, eventstore.ErrNotFound
}

func (s *Events) Delete(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.events {
		if e.ID == id && e.UserID == userID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return eventstore.ErrNotFound
}

func (s *Events) ListRange(_ context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	in := func(t time.Time) bool { return !t.Before(from) && !t.After(to) }
	out := s.filter(func(e models.Event) bool {
		return e.UserID == userID && (in(e.StartDate) || (e.EndDate != nil && in(*e.EndDate)))
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *Events) Upcoming(_ context.Context, userID string, from, to time.Time, limit int64) ([]models.Event, error) {
	out := s.filter(func(e models.Event) bool {
		return e.UserID == userID && !e.StartDate.Before(from) && e.StartDate.Before(to)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityRank != out[j].PriorityRank {
			return out[i].PriorityRank > out[j].PriorityRank
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Events) CountStartingBetween(_ context.Context, userID string, from, to time.Time) (int64, error) {
	out := s.filter(func(e models.Event) bool {
		return e.UserID == userID && !e.StartDate.Before(from) && e.StartDate.Before(to)
	})
	return int64(len(out)), nil
}

func (s *Events) filter(keep func(models.Event) bool) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Notifications mirrors notificationstore.Store.
type Notifications struct {
	mu    sync.Mutex
	items []models.Notification
	// FailInsert, when set, is returned by Insert.
	FailInsert error
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (s *Notifications) Insert(_ context.Context, n models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert != nil {
		return models.Notification{}, s.FailInsert
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	s.items = append(s.items, n)
	return n, nil
}

func (s *Notifications) List(_ context.Context, userID string, limit int64) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Notification{}
	for _, n := range s.items {
		if n.UserID == userID && n.DeliveredAt != nil {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeliveredAt.After(*out[j].DeliveredAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, userID string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.items {
		if n.ID == id && n.UserID == userID {
			s.items[i].Read = true
			return nil
		}
	}
	return notificationstore.ErrNotFound
}

func (s *Notifications) ClaimDue(_ context.Context, now time.Time) (models.Notification, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := -1
	for i, n := range s.items {
		if n.DeliveredAt != nil || n.ScheduledFor.After(now) {
			continue
		}
		if best < 0 || n.ScheduledFor.Before(s.items[best].ScheduledFor) {
			best = i
		}
	}
	if best < 0 {
		return models.Notification{}, false, nil
	}
	at := now
	s.items[best].DeliveredAt = &at
	return s.items[best], true, nil
}

func (s *Notifications) DeleteForEvent(_ context.Context, userID string, eventID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	kept := s.items[:0]
	for _, it := range s.items {
		if it.UserID == userID && it.EventID != nil && *it.EventID == eventID && it.DeliveredAt == nil {
			n++
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	return n, nil
}

// All returns a copy of every stored notification.
func (s *Notifications) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.items...)
}
