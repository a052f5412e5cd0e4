// Package pubsub delivers real-time messages (group chat, notifications) to
// subscribed clients. Delivery is at-most-once: a slow subscriber loses
// messages rather than blocking publishers, and nothing is replayed.
package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is the envelope carried on a channel.
type Message struct {
	ID      string          `json:"id"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
	SentAt  time.Time       `json:"sentAt"`
}

// Event names.
const (
	EventNewMessage   = "new-message"
	EventNotification = "notification"
	EventGroupFile    = "new-file"
)

// Bus publishes to and subscribes on named channels.
type Bus interface {
	Publish(ctx context.Context, channel, event string, payload any) error
	// Subscribe returns a channel of messages that is closed when ctx ends
	// or the returned cancel func is called.
	Subscribe(ctx context.Context, channel string) (<-chan Message, func(), error)
	Close() error
}

// GroupChannel is the channel for a study group's chat.
func GroupChannel(groupID string) string { return "group-" + groupID }

// UserChannel is the channel for a user's notifications.
func UserChannel(userID string) string { return "user-" + userID }

// subscriberBuffer is how many undelivered messages a subscriber may hold.
const subscriberBuffer = 32

func newMessage(channel, event string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{
		ID:      uuid.NewString(),
		Channel: channel,
		Event:   event,
		Data:    data,
		SentAt:  time.Now().UTC(),
	}, nil
}
