package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tagflow/internal/config"
	"tagflow/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventTaskFinished, notifications.Payload{"task_id": 1}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		event          notifications.Event
		payload        notifications.Payload
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name:          "tasks assigned",
			event:         notifications.EventTasksAssigned,
			payload:       notifications.Payload{"count": 3, "filename": "song"},
			expectTitle:   "tagflow - Tasks Assigned",
			expectMessage: "3 task(s) created for song",
			expectTags:    "tagflow,task,assigned",
		},
		{
			name:          "task finished",
			event:         notifications.EventTaskFinished,
			payload:       notifications.Payload{"task_id": int64(7), "filename": "song", "tagger": "alice"},
			expectTitle:   "tagflow - Ready for Review",
			expectMessage: "Task 7 (song) submitted by alice",
			expectTags:    "tagflow,task,review",
		},
		{
			name:          "task approved",
			event:         notifications.EventTaskReviewed,
			payload:       notifications.Payload{"task_id": int64(7), "filename": "song", "reviewer": "rita", "result": "AGREED"},
			expectTitle:   "tagflow - Task Approved",
			expectMessage: "Task 7 (song) approved by rita",
			expectTags:    "tagflow,task,approved",
		},
		{
			name:           "task rejected with comment",
			event:          notifications.EventTaskReviewed,
			payload:        notifications.Payload{"task_id": int64(7), "filename": "song", "reviewer": "rita", "result": "DISAGREED", "comment": "wrong genre"},
			expectTitle:    "tagflow - Task Rejected",
			expectMessage:  "Task 7 (song) sent back by rita\nComment: wrong genre",
			expectTags:     "tagflow,task,rejected",
			expectPriority: "high",
		},
		{
			name:          "export archived",
			event:         notifications.EventExportArchived,
			payload:       notifications.Payload{"bucket": "tags", "key": "exports/2026/01/02/x.json"},
			expectTitle:   "tagflow - Export Archived",
			expectMessage: "Export stored at s3://tags/exports/2026/01/02/x.json",
			expectTags:    "tagflow,export,archived",
		},
		{
			name:           "test",
			event:          notifications.EventTest,
			expectTitle:    "tagflow - Test",
			expectMessage:  "Notification system test",
			expectTags:     "tagflow,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeoutSeconds = 5

			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tc.event, tc.payload); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceIgnoresUnknownEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected call for unknown event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.Event("disc_detected"), nil); err != nil {
		t.Fatalf("expected no error for unknown event, got %v", err)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	err := notifications.NewService(&cfg).Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 403: topic locked") {
		t.Fatalf("expected status error, got %v", err)
	}
}
