// internal/domain/models/groupmessage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMessage is one chat line in a study group.
type GroupMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"groupId"`
	UserID    string             `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
