package activity

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestEvent_JSONShape(t *testing.T) {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	b, err := json.Marshal(Event{
		Type:         MaterialCreated,
		OwnerID:      "user_1",
		MaterialID:   "65f0c0ffee0000000000beef",
		MaterialType: "link",
		Title:        "Syllabus",
		At:           at,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"material.created","ownerId":"user_1","materialId":"65f0c0ffee0000000000beef","materialType":"link","title":"Syllabus","at":"2025-03-10T12:00:00Z"}`
	if string(b) != want {
		t.Errorf("json = %s\nwant  %s", b, want)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	_ = r.Publish(ctx, Event{Type: MaterialCreated})
	_ = r.Publish(ctx, Event{Type: MaterialDeleted})

	got := r.Events()
	if len(got) != 2 || got[0].Type != MaterialCreated || got[1].Type != MaterialDeleted {
		t.Errorf("events = %+v", got)
	}
}

func TestKafkaPublisher_UnreachableBrokerFails(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "studypal.test", zap.NewNop())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, Event{Type: MaterialDeleted, OwnerID: "user_1"})
	if err == nil {
		t.Fatal("expected an error with no broker listening")
	}
	if !strings.Contains(err.Error(), MaterialDeleted) {
		t.Errorf("error %q does not name the event type", err)
	}
}
