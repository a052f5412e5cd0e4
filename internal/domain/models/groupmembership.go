// internal/domain/models/groupmembership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMembership is the authoritative join between users and study groups.
// Exactly one document per (user_id, group_id); role is "owner" or "member".
type GroupMembership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"groupId"`
	UserID    string             `bson:"user_id" json:"userId"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Membership roles.
const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)
