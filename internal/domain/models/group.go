// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudyGroup is a collaboration space with chat and shared files.
//
// NOTE:
//   - Members are not embedded on the group.
//     All membership is stored in the group_memberships collection.
//   - Private groups are only visible to (and joinable by invitation of) members.
type StudyGroup struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	DescCI      string             `bson:"description_ci" json:"-"`
	IsPrivate   bool               `bson:"is_private" json:"isPrivate"`
	OwnerID     string             `bson:"owner_id" json:"ownerId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
