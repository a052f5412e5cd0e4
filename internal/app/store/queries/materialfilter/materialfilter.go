// Package materialfilter describes an owner's filtered, sorted view of
// materials. The same Filter drives the MongoDB query (BSON, Sort) and the
// in-memory evaluation (Matches, Less), which must agree.
package materialfilter

import (
	"bytes"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort orders.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortPriority = "priority"
)

// Filter is a set of optional constraints composed with AND.
// Empty fields do not constrain.
type Filter struct {
	Type     string
	Tag      string
	Priority string
	Query    string
	Sort     string
}

// FromValues reads type, tag, priority, q (or search) and sort from query
// parameters. An unknown sort falls back to newest. Unknown type or priority
// values are kept so they simply match nothing.
func FromValues(v url.Values) Filter {
	q := v.Get("q")
	if q == "" {
		q = v.Get("search")
	}
	f := Filter{
		Type:     normalize.Lower(v.Get("type")),
		Tag:      normalize.Tag(v.Get("tag")),
		Priority: normalize.Lower(v.Get("priority")),
		Query:    normalize.QueryParam(q),
		Sort:     normalize.Lower(v.Get("sort")),
	}
	if f.Type == "all" {
		f.Type = ""
	}
	if f.Priority == "all" {
		f.Priority = ""
	}
	return f
}

// SortOrder returns the effective sort order.
func (f Filter) SortOrder() string {
	switch f.Sort {
	case SortOldest, SortPriority:
		return f.Sort
	default:
		return SortNewest
	}
}

// BSON returns the Mongo filter for ownerID's materials.
func (f Filter) BSON(ownerID string) bson.M {
	q := bson.M{"owner_id": ownerID}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Tag != "" {
		q["tags"] = f.Tag
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
			bson.M{"url": re},
		}
	}
	return q
}

// SortBSON returns the Mongo sort document. _id breaks ties so the order is
// deterministic.
func (f Filter) SortBSON() bson.D {
	switch f.SortOrder() {
	case SortOldest:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case SortPriority:
		return bson.D{{Key: "priority_rank", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// Matches reports whether m satisfies every constraint (ownership excluded).
func (f Filter) Matches(m models.Material) bool {
	if f.Type != "" && m.Type() != f.Type {
		return false
	}
	if f.Tag != "" && !m.HasTag(f.Tag) {
		return false
	}
	if f.Priority != "" && m.Priority != f.Priority {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(m.Title), q) &&
			!strings.Contains(strings.ToLower(m.Content()), q) &&
			!strings.Contains(strings.ToLower(m.URL()), q) {
			return false
		}
	}
	return true
}

// Less reports whether a sorts before b.
func (f Filter) Less(a, b models.Material) bool {
	switch f.SortOrder() {
	case SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	case SortPriority:
		ra, rb := models.PriorityRank(a.Priority), models.PriorityRank(b.Priority)
		if ra != rb {
			return ra > rb
		}
		fallthrough
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	}
}

// Apply returns the matching materials in sort order. The input is not
// modified and the result is never nil.
func (f Filter) Apply(in []models.Material) []models.Material {
	out := make([]models.Material, 0, len(in))
	for _, m := range in {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return f.Less(out[i], out[j]) })
	return out
}
