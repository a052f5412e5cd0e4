// internal/app/store/events/eventstore.go
package eventstore

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

var ErrNotFound = errors.New("event not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// Create inserts e, assigning ID, timestamps and the priority rank.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.PriorityRank = models.PriorityRank(e.Priority)
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Get returns the event only when userID owns it.
func (s *Store) Get(ctx context.Context, userID string, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, ErrNotFound
	}
	return e, err
}

// Delete removes the event only when userID owns it.
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

// ListRange returns userID's events whose start or end falls within
// [from, to], ordered by start.
func (s *Store) ListRange(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	window := bson.M{"$gte": from, "$lte": to}
	filter := bson.M{
		"user_id": userID,
		"$or":     bson.A{bson.M{"start_date": window}, bson.M{"end_date": window}},
	}
	return s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}))
}

// Upcoming returns at most limit events starting in [from, to), most urgent
// first, then soonest.
func (s *Store) Upcoming(ctx context.Context, userID string, from, to time.Time, limit int64) ([]models.Event, error) {
	filter := bson.M{
		"user_id":    userID,
		"start_date": bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "priority_rank", Value: -1}, {Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	return s.find(ctx, filter, opts)
}

// CountStartingBetween counts userID's events starting in [from, to).
func (s *Store) CountStartingBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"start_date": bson.M{"$gte": from, "$lt": to},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
