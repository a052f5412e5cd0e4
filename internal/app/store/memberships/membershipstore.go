// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studypal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

var errBadRole = errors.New(`role must be "owner" or "member"`)

var (
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	ErrNotFound            = errors.New("membership not found")
)

// Add creates a membership. The unique (group_id, user_id) index turns a
// second join into ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, groupID primitive.ObjectID, userID, role string) (models.GroupMembership, error) {
	if role != models.GroupRoleOwner && role != models.GroupRoleMember {
		return models.GroupMembership{}, errBadRole
	}
	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.GroupMembership{}, ErrDuplicateMembership
		}
		return models.GroupMembership{}, err
	}
	return m, nil
}

// Get returns userID's membership in groupID.
func (s *Store) Get(ctx context.Context, groupID primitive.ObjectID, userID string) (models.GroupMembership, error) {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupMembership{}, ErrNotFound
	}
	return m, err
}

// GroupIDsForUser lists the groups userID belongs to.
func (s *Store) GroupIDsForUser(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, "group_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CountsByGroup returns the member count of each group in groupIDs.
// Groups without members are absent from the map.
func (s *Store) CountsByGroup(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return CountByGroupID(ctx, s.c, groupIDs)
}

// CountByGroupID aggregates document counts per group_id in c. Shared by the
// group-scoped collections (memberships, messages, files).
func CountByGroupID(ctx context.Context, c *mongo.Collection, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	result := make(map[primitive.ObjectID]int64)
	if len(groupIDs) == 0 {
		return result, nil
	}

	cur, err := c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"group_id": bson.M{"$in": groupIDs}}},
		{"$group": bson.M{"_id": "$group_id", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
			N  int64              `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		result[row.ID] = row.N
	}
	return result, cur.Err()
}
