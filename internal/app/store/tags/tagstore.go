// internal/app/store/tags/tagstore.go
package tagstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studypal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("tag not found")
	ErrDuplicate = errors.New("a tag with this name already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tags")}
}

// List returns userID's tags, most used first, then by name.
func (s *Store) List(ctx context.Context, userID string) ([]models.Tag, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "count", Value: -1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Tag{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a tag. A duplicate (user, name) returns ErrDuplicate.
func (s *Store) Create(ctx context.Context, t models.Tag) (models.Tag, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Tag{}, ErrDuplicate
		}
		return models.Tag{}, err
	}
	return t, nil
}

// Seed inserts any of names userID does not already have, with a zero count.
func (s *Store) Seed(ctx context.Context, userID string, names []string) error {
	now := time.Now().UTC()
	for _, n := range names {
		_, err := s.c.UpdateOne(ctx,
			bson.M{"user_id": userID, "name": n},
			bson.M{"$setOnInsert": bson.M{"count": int64(0), "created_at": now, "updated_at": now}},
			options.Update().SetUpsert(true),
		)
		if err != nil && !wafflemongo.IsDup(err) {
			return err
		}
	}
	return nil
}

// Update renames and/or recolors a tag owned by userID. Empty values are
// left unchanged.
func (s *Store) Update(ctx context.Context, userID string, id primitive.ObjectID, name, color string) (models.Tag, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if color != "" {
		set["color"] = color
	}

	var t models.Tag
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.Tag{}, ErrNotFound
	case wafflemongo.IsDup(err):
		return models.Tag{}, ErrDuplicate
	case err != nil:
		return models.Tag{}, err
	}
	return t, nil
}

// Delete removes a tag owned by userID.
func (s *Store) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Adjust adds delta to the count of each named tag. Positive deltas create
// missing tags; negative deltas never take a count below zero.
func (s *Store) Adjust(ctx context.Context, userID string, names []string, delta int64) error {
	if len(names) == 0 || delta == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, n := range names {
		var err error
		if delta > 0 {
			_, err = s.c.UpdateOne(ctx,
				bson.M{"user_id": userID, "name": n},
				bson.M{
					"$inc":         bson.M{"count": delta},
					"$set":         bson.M{"updated_at": now},
					"$setOnInsert": bson.M{"created_at": now},
				},
				options.Update().SetUpsert(true),
			)
		} else {
			_, err = s.c.UpdateOne(ctx,
				bson.M{"user_id": userID, "name": n, "count": bson.M{"$gte": -delta}},
				bson.M{"$inc": bson.M{"count": delta}, "$set": bson.M{"updated_at": now}},
			)
		}
		if err != nil && !wafflemongo.IsDup(err) {
			return err
		}
	}
	return nil
}
