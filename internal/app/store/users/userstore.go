package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("user profile not found")
	// ErrExists is returned when a profile for the identity already exists.
	ErrExists = errors.New("user profile already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Get loads a profile by identity-provider subject.
func (s *Store) Get(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// Insert creates a profile. Name and email are normalized; timestamps are
// set. A second insert for the same ID returns ErrExists.
func (s *Store) Insert(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrExists
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateAcademics sets major and academic year.
func (s *Store) UpdateAcademics(ctx context.Context, id, major, year string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"major":         major,
		"academic_year": year,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
