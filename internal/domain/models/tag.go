// internal/domain/models/tag.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag is a user-owned label. (user_id, name) is unique.
// Count is advisory: it tracks how many materials carry the tag and is
// adjusted on material create/delete without coordination.
type Tag struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"user_id" json:"userId"`
	Name   string             `bson:"name" json:"name"`
	Color  string             `bson:"color,omitempty" json:"color,omitempty"`
	Count  int64              `bson:"count" json:"count"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
