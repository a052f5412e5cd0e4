// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a calendar entry owned by a user.
//
// Reminders holds lead times in minutes before StartDate; each one is
// materialized as a Notification when the event is created.
type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"userId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	StartDate    time.Time          `bson:"start_date" json:"startDate"`
	EndDate      *time.Time         `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Type         string             `bson:"type" json:"type"`
	Priority     string             `bson:"priority" json:"priority"`
	PriorityRank int                `bson:"priority_rank" json:"-"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	IsOnline     bool               `bson:"is_online" json:"isOnline"`
	MeetingURL   string             `bson:"meeting_url,omitempty" json:"meetingUrl,omitempty"`
	Reminders    []int              `bson:"reminders,omitempty" json:"reminders,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Canonical event type identifiers.
const (
	EventTypeDeadline = "deadline"
	EventTypeExam     = "exam"
	EventTypeMeeting  = "meeting"
	EventTypeOther    = "other"
)

// EventTypes is the full set of allowed event types.
var EventTypes = []string{EventTypeDeadline, EventTypeExam, EventTypeMeeting, EventTypeOther}

// IsValidEventType reports whether t is one of EventTypes.
func IsValidEventType(t string) bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}
