// internal/app/store/notifications/notificationstore.go
package notificationstore

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

var ErrNotFound = errors.New("notification not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert stores n, assigning ID and CreatedAt.
func (s *Store) Insert(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// List returns userID's delivered notifications, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int64) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID, "delivered_at": bson.M{"$ne": nil}}
	opts := options.Find().
		SetSort(bson.D{{Key: "delivered_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags a notification owned by userID as read.
func (s *Store) MarkRead(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimDue atomically marks the oldest undelivered notification scheduled at
// or before now as delivered and returns it. ok is false when none are due.
func (s *Store) ClaimDue(ctx context.Context, now time.Time) (n models.Notification, ok bool, err error) {
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"delivered_at": nil, "scheduled_for": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"delivered_at": now}},
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "scheduled_for", Value: 1}}).
			SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Notification{}, false, nil
	}
	if err != nil {
		return models.Notification{}, false, err
	}
	return n, true, nil
}

// DeleteForEvent removes userID's undelivered notifications for eventID.
func (s *Store) DeleteForEvent(ctx context.Context, userID string, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID, "event_id": eventID, "delivered_at": nil})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
