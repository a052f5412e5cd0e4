// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/studypal/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("study group not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.StudyGroup, error) {
	var g models.StudyGroup
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StudyGroup{}, ErrNotFound
	}
	return g, err
}

// Create inserts g with folded search fields and fresh timestamps.
func (s *Store) Create(ctx context.Context, g models.StudyGroup) (models.StudyGroup, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.DescCI = text.Fold(g.Description)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.StudyGroup{}, err
	}
	return g, nil
}

// Search returns public groups plus the groups in memberOf, newest first.
// A non-empty query must appear in the name or description (case-insensitive).
func (s *Store) Search(ctx context.Context, memberOf []primitive.ObjectID, query string) ([]models.StudyGroup, error) {
	visible := bson.A{bson.M{"is_private": false}}
	if len(memberOf) > 0 {
		visible = append(visible, bson.M{"_id": bson.M{"$in": memberOf}})
	}
	filter := bson.M{"$or": visible}

	if query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(query))}
		filter = bson.M{"$and": bson.A{
			filter,
			bson.M{"$or": bson.A{bson.M{"name_ci": re}, bson.M{"description_ci": re}}},
		}}
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.StudyGroup{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

