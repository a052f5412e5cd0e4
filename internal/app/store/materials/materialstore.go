// internal/app/store/materials/materialstore.go
package materialstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studypal/internal/app/store/queries/materialfilter"
	"github.com/dalemusser/studypal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicate = errors.New("a material with this title or file already exists")
	ErrNotFound  = errors.New("material not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("materials")}
}

// doc is the stored shape. The body variant is flattened into
// content/url/file_id; title_ci and priority_rank exist for indexing.
type doc struct {
	ID           primitive.ObjectID `bson:"_id"`
	OwnerID      string             `bson:"owner_id"`
	Title        string             `bson:"title"`
	TitleCI      string             `bson:"title_ci"`
	Type         string             `bson:"type"`
	Content      string             `bson:"content,omitempty"`
	URL          string             `bson:"url,omitempty"`
	FileID       string             `bson:"file_id,omitempty"`
	FileSize     int64              `bson:"file_size,omitempty"`
	Tags         []string           `bson:"tags"`
	Priority     string             `bson:"priority"`
	PriorityRank int                `bson:"priority_rank"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toDoc(m models.Material) doc {
	d := doc{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		TitleCI:      text.Fold(m.Title),
		Type:         m.Type(),
		Tags:         m.Tags,
		Priority:     m.Priority,
		PriorityRank: models.PriorityRank(m.Priority),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	switch b := m.Body.(type) {
	case models.NoteBody:
		d.Content = b.Content
	case models.LinkBody:
		d.URL = b.URL
	case models.PDFBody:
		d.FileID = b.FileID
		d.FileSize = b.FileSize
	}
	return d
}

func (d doc) material() (models.Material, error) {
	m := models.Material{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Title:     d.Title,
		Tags:      d.Tags,
		Priority:  d.Priority,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	switch d.Type {
	case models.MaterialTypeNote:
		m.Body = models.NoteBody{Content: d.Content}
	case models.MaterialTypeLink:
		m.Body = models.LinkBody{URL: d.URL}
	case models.MaterialTypePDF:
		m.Body = models.PDFBody{FileID: d.FileID, FileSize: d.FileSize}
	default:
		return models.Material{}, fmt.Errorf("material %s: unknown type %q", d.ID.Hex(), d.Type)
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

// Create inserts m. ID and timestamps are assigned when zero. A unique-index
// violation on (owner_id, title_ci) returns ErrDuplicate.
func (s *Store) Create(ctx context.Context, m models.Material) (models.Material, error) {
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

	if _, err := s.c.InsertOne(ctx, toDoc(m)); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Material{}, ErrDuplicate
		}
		return models.Material{}, err
	}
	return m, nil
}

// ExistsDuplicate reports whether ownerID already has a material with the
// same folded title, or (when fileID is set) the same file reference.
func (s *Store) ExistsDuplicate(ctx context.Context, ownerID, title, fileID string) (bool, error) {
	or := bson.A{bson.M{"title_ci": text.Fold(title)}}
	if fileID != "" {
		or = append(or, bson.M{"file_id": fileID})
	}
	err := s.c.FindOne(ctx,
		bson.M{"owner_id": ownerID, "$or": or},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns ownerID's materials matching f in f's sort order.
func (s *Store) List(ctx context.Context, ownerID string, f materialfilter.Filter) ([]models.Material, error) {
	cur, err := s.c.Find(ctx, f.BSON(ownerID), options.Find().SetSort(f.SortBSON()))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Material{}
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		m, err := d.material()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// Get returns the material only when ownerID owns it; otherwise ErrNotFound.
func (s *Store) Get(ctx context.Context, ownerID string, id primitive.ObjectID) (models.Material, error) {
	var d doc
	err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Material{}, ErrNotFound
	}
	if err != nil {
		return models.Material{}, err
	}
	return d.material()
}

// Delete removes the material only when ownerID owns it; otherwise ErrNotFound.
func (s *Store) Delete(ctx context.Context, ownerID string, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns how many materials ownerID has.
func (s *Store) Count(ctx context.Context, ownerID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID})
}

// CountSince returns how many materials ownerID created at or after t.
func (s *Store) CountSince(ctx context.Context, ownerID string, t time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID, "created_at": bson.M{"$gte": t}})
}
