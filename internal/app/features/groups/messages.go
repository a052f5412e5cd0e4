// internal/app/features/groups/messages.go
package groups

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/studypal/internal/app/features/errors"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

const (
	historyLimit     = 200
	maxMessageLength = 2000
	streamHeartbeat  = 15 * time.Second
)

type messageInput struct {
	Content string `json:"content"`
}

// ServeMessages returns the recent chat history, oldest first.
// GET /groups/{id}/messages
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list messages")
	defer cancel()

	list, err := h.Messages.Recent(ctx, g.ID, historyLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list messages failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}
	if list == nil {
		list = []models.GroupMessage{}
	}
	uierrors.WriteJSON(w, http.StatusOK, list)
}

// HandlePostMessage stores a chat line and publishes it to the group channel.
// POST /groups/{id}/messages
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}

	if h.ChatLimiter != nil && !h.ChatLimiter.Allow(u.ID) {
		uierrors.WriteJSON(w, http.StatusTooManyRequests, uierrors.Response{Error: "You are sending messages too quickly."})
		return
	}

	var in messageInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode message failed", err, "Invalid JSON body.")
		return
	}
	content := strings.TrimSpace(htmlsanitize.StripTags(in.Content))
	if content == "" {
		uierrors.BadRequest(w, "Message is required.", "content")
		return
	}
	if len([]rune(content)) > maxMessageLength {
		uierrors.BadRequest(w, fmt.Sprintf("Message must be at most %d characters.", maxMessageLength), "content")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "post message")
	defer cancel()

	m, err := h.Messages.Insert(ctx, models.GroupMessage{
		GroupID:  g.ID,
		UserID:   u.ID,
		UserName: u.Name,
		Content:  content,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "insert message failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}

	h.publish(r.Context(), groupChannel(g), pubsub.EventNewMessage, m)
	h.Metrics.ChatMessage()
	uierrors.WriteJSON(w, http.StatusCreated, m)
}

// ServeStream relays the group channel to the client as Server-Sent Events
// until the client disconnects.
// GET /groups/{id}/stream
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	g, _, ok := h.memberOf(w, r, u.ID)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok || h.Bus == nil {
		h.ErrLog.LogServerError(w, r, "stream unsupported", fmt.Errorf("streaming not available"))
		return
	}

	msgs, unsubscribe, err := h.Bus.Subscribe(r.Context(), groupChannel(g))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "subscribe failed", err, zap.String("group_id", g.ID.Hex()))
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, open := <-msgs:
			if !open {
				return
			}
			if err := writeEvent(w, msg); err != nil {
				h.Log.Debug("stream write failed", zap.String("group_id", g.ID.Hex()), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, msg pubsub.Message) error {
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\n", msg.ID, msg.Event); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "data: %s\n\n", msg.Data)
	return err
}
