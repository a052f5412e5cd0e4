// internal/app/store/groupmessages/messagestore.go
package messagestore

import (
	"context"
	"time"

	membershipstore "github.com/dalemusser/studypal/internal/app/store/memberships"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_messages")}
}

// Insert stores m with a new ID and timestamp.
func (s *Store) Insert(ctx context.Context, m models.GroupMessage) (models.GroupMessage, error) {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.GroupMessage{}, err
	}
	return m, nil
}

// Recent returns the latest limit messages of groupID in chronological order.
func (s *Store) Recent(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.GroupMessage, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.GroupMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountsByGroup returns the message count of each group in groupIDs.
func (s *Store) CountsByGroup(ctx context.Context, groupIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return membershipstore.CountByGroupID(ctx, s.c, groupIDs)
}

