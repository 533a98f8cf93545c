package tagging_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tagflow/internal/notifications"
	"tagflow/internal/tagging"
)

type published struct {
	event   notifications.Event
	payload notifications.Payload
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{event: event, payload: payload})
	return r.err
}

func TestWorkflowPublishesEvents(t *testing.T) {
	h := newHarness(t)
	rec := &recordingNotifier{}
	h.engine.SetNotifier(rec)

	taskID := h.assign(t, h.tagger3)[0]
	records := h.detail(t, taskID).Records
	h.mustSelect(t, h.tagger3, records[0].ID, "Rock")
	h.mustSelect(t, h.tagger3, records[1].ID, "Happy")
	h.mustFinish(t, h.tagger3, taskID)
	h.mustReview(t, taskID, tagging.ReviewDisagreed, "check mood")

	want := []notifications.Event{
		notifications.EventTasksAssigned,
		notifications.EventTaskFinished,
		notifications.EventTaskReviewed,
	}
	if len(rec.events) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), rec.events)
	}
	for i, event := range want {
		if rec.events[i].event != event {
			t.Fatalf("event %d = %s, want %s", i, rec.events[i].event, event)
		}
	}
	if got := rec.events[0].payload["filename"]; got != "track07" {
		t.Fatalf("expected assigned filename track07, got %v", got)
	}
	if got := rec.events[1].payload["tagger"]; got != "tess" {
		t.Fatalf("expected finished tagger tess, got %v", got)
	}
	reviewed := rec.events[2].payload
	if reviewed["result"] != "DISAGREED" || reviewed["reviewer"] != "rick" || reviewed["comment"] != "check mood" {
		t.Fatalf("unexpected review payload: %+v", reviewed)
	}
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	h := newHarness(t)
	h.engine.SetNotifier(&recordingNotifier{err: errors.New("ntfy down")})

	taskID := h.assign(t, h.tagger3)[0]
	if taskID == 0 {
		t.Fatal("expected task to be created despite notifier failure")
	}
	h.engine.SetNotifier(nil)
	records := h.detail(t, taskID).Records
	h.mustSelect(t, h.tagger3, records[0].ID, "Pop")
	h.mustFinish(t, h.tagger3, taskID)
}
