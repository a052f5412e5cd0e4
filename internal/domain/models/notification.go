// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a message addressed to one user.
//
// Reminder notifications are scheduled (ScheduledFor in the future) and are
// delivered by the reminder dispatcher; other kinds are delivered on insert.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       string              `bson:"user_id" json:"userId"`
	Type         string              `bson:"type" json:"type"`
	Title        string              `bson:"title" json:"title"`
	Content      string              `bson:"content" json:"content"`
	EventID      *primitive.ObjectID `bson:"event_id,omitempty" json:"eventId,omitempty"`
	GroupID      *primitive.ObjectID `bson:"group_id,omitempty" json:"groupId,omitempty"`
	ScheduledFor time.Time           `bson:"scheduled_for" json:"scheduledFor"`
	DeliveredAt  *time.Time          `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	Read         bool                `bson:"read" json:"read"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
}

// Notification types.
const (
	NotificationEventReminder = "event_reminder"
	NotificationGroupJoin     = "group_join"
)
