// internal/app/store/groupfiles/groupfilestore.go
package groupfilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("shared file not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_files")}
}

func (s *Store) Insert(ctx context.Context, f models.GroupFile) (models.GroupFile, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.GroupFile{}, err
	}
	return f, nil
}

// List returns groupID's files, newest first.
func (s *Store) List(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupFile, error) {
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.GroupFile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the file only when it belongs to groupID.
func (s *Store) Get(ctx context.Context, groupID, id primitive.ObjectID) (models.GroupFile, error) {
	var f models.GroupFile
	err := s.c.FindOne(ctx, bson.M{"_id": id, "group_id": groupID}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupFile{}, ErrNotFound
	}
	return f, err
}

func (s *Store) Delete(ctx context.Context, groupID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "group_id": groupID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSharedWith counts files in groupIDs uploaded by someone other than userID.
func (s *Store) CountSharedWith(ctx context.Context, groupIDs []primitive.ObjectID, userID string) (int64, error) {
	if len(groupIDs) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"group_id":    bson.M{"$in": groupIDs},
		"uploader_id": bson.M{"$ne": userID},
	})
}
