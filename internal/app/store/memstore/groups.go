package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	groupfilestore "github.com/dalemusser/studypal/internal/app/store/groupfiles"
	groupstore "github.com/dalemusser/studypal/internal/app/store/groups"
	membershipstore "github.com/dalemusser/studypal/internal/app/store/memberships"
	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Groups mirrors groupstore.Store.
type Groups struct {
	mu     sync.Mutex
	groups []models.StudyGroup
	// FailCreate, when set, is returned by Create.
	FailCreate error
}

func NewGroups() *Groups {
	return &Groups{}
}

func (s *Groups) GetByID(_ context.Context, id primitive.ObjectID) (models.StudyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return models.StudyGroup{}, groupstore.ErrNotFound
}

func (s *Groups) Create(_ context.Context, g models.StudyGroup) (models.StudyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return models.StudyGroup{}, s.FailCreate
	}
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI, g.DescCI = text.Fold(g.Name), text.Fold(g.Description)
	g.CreatedAt, g.UpdatedAt = now, now
	s.groups = append(s.groups, g)
	return g, nil
}

func (s *Groups) Search(_ context.Context, memberOf []primitive.ObjectID, query string) ([]models.StudyGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := make(map[primitive.ObjectID]bool, len(memberOf))
	for _, id := range memberOf {
		member[id] = true
	}
	q := text.Fold(query)

	out := []models.StudyGroup{}
	for _, g := range s.groups {
		if g.IsPrivate && !member[g.ID] {
			continue
		}
		if q != "" && !strings.Contains(g.NameCI, q) && !strings.Contains(g.DescCI, q) {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// Memberships mirrors membershipstore.Store.
type Memberships struct {
	mu      sync.Mutex
	members []models.GroupMembership
}

func NewMemberships() *Memberships {
	return &Memberships{}
}

func (s *Memberships) Add(_ context.Context, groupID primitive.ObjectID, userID, role string) (models.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			return models.GroupMembership{}, membershipstore.ErrDuplicateMembership
		}
	}
	m := models.GroupMembership{ID: primitive.NewObjectID(), GroupID: groupID, UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	s.members = append(s.members, m)
	return m, nil
}

func (s *Memberships) Get(_ context.Context, groupID primitive.ObjectID, userID string) (models.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.GroupID == groupID && m.UserID == userID {
			return m, nil
		}
	}
	return models.GroupMembership{}, membershipstore.ErrNotFound
}

func (s *Memberships) GroupIDsForUser(_ context.Context, userID string) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := []primitive.ObjectID{}
	for _, m := range s.members {
		if m.UserID == userID {
			ids = append(ids, m.GroupID)
		}
	}
	return ids, nil
}

func (s *Memberships) CountsByGroup(_ context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[primitive.ObjectID]int64)
	for _, id := range groupIDs {
		for _, m := range s.members {
			if m.GroupID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

// Messages mirrors messagestore.Store.
type Messages struct {
	mu       sync.Mutex
	messages []models.GroupMessage
}

func NewMessages() *Messages {
	return &Messages{}
}

func (s *Messages) Insert(_ context.Context, m models.GroupMessage) (models.GroupMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *Messages) Recent(_ context.Context, groupID primitive.ObjectID, limit int64) ([]models.GroupMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.GroupMessage{}
	for _, m := range s.messages {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	if int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (s *Messages) CountsByGroup(_ context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[primitive.ObjectID]int64)
	for _, id := range groupIDs {
		for _, m := range s.messages {
			if m.GroupID == id {
				out[id]++
			}
		}
	}
	return out, nil
}

// GroupFiles mirrors groupfilestore.Store.
type GroupFiles struct {
	mu    sync.Mutex
	files []models.GroupFile
}

func NewGroupFiles() *GroupFiles {
	return &GroupFiles{}
}

func (s *GroupFiles) Insert(_ context.Context, f models.GroupFile) (models.GroupFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now().UTC()
	s.files = append(s.files, f)
	return f, nil
}

func (s *GroupFiles) List(_ context.Context, groupID primitive.ObjectID) ([]models.GroupFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.GroupFile{}
	for i := len(s.files) - 1; i >= 0; i-- {
		if s.files[i].GroupID == groupID {
			out = append(out, s.files[i])
		}
	}
	return out, nil
}

func (s *GroupFiles) Get(_ context.Context, groupID, id primitive.ObjectID) (models.GroupFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.ID == id && f.GroupID == groupID {
			return f, nil
		}
	}
	return models.GroupFile{}, groupfilestore.ErrNotFound
}

func (s *GroupFiles) Delete(_ context.Context, groupID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.ID == id && f.GroupID == groupID {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return groupfilestore.ErrNotFound
}

func (s *GroupFiles) CountSharedWith(_ context.Context, groupIDs []primitive.ObjectID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := make(map[primitive.ObjectID]bool, len(groupIDs))
	for _, id := range groupIDs {
		in[id] = true
	}
	var n int64
	for _, f := range s.files {
		if in[f.GroupID] && f.UploaderID != userID {
			n++
		}
	}
	return n, nil
}
