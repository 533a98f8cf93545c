package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tagflow/internal/config"
)

const userAgent = "tagflow/1.0"

// Event names a workflow milestone.
type Event string

const (
	EventTasksAssigned  Event = "tasks_assigned"
	EventTaskFinished   Event = "task_finished"
	EventTaskReviewed   Event = "task_reviewed"
	EventExportArchived Event = "export_archived"
	EventTest           Event = "test"
)

// Payload carries event fields by name.
type Payload map[string]any

func (p Payload) text(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

// Service publishes workflow events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed Service, or a no-op one when
// notifications.ntfy_topic is empty.
func NewService(cfg *config.Config) Service {
	if cfg == nil || cfg.Notifications.NtfyTopic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: cfg.Notifications.NtfyTopic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Noop returns a Service that drops every event.
func Noop() Service {
	return noopService{}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

func render(event Event, p Payload) (message, bool) {
	switch event {
	case EventTasksAssigned:
		return message{
			title: "tagflow - Tasks Assigned",
			body:  fmt.Sprintf("%s task(s) created for %s", orUnknown(p.text("count")), orUnknown(p.text("filename"))),
			tags:  []string{"tagflow", "task", "assigned"},
		}, true
	case EventTaskFinished:
		return message{
			title: "tagflow - Ready for Review",
			body:  fmt.Sprintf("Task %s (%s) submitted by %s", p.text("task_id"), orUnknown(p.text("filename")), orUnknown(p.text("tagger"))),
			tags:  []string{"tagflow", "task", "review"},
		}, true
	case EventTaskReviewed:
		msg := message{
			title: "tagflow - Task Approved",
			body:  fmt.Sprintf("Task %s (%s) approved by %s", p.text("task_id"), orUnknown(p.text("filename")), orUnknown(p.text("reviewer"))),
			tags:  []string{"tagflow", "task", "approved"},
		}
		if strings.EqualFold(p.text("result"), "DISAGREED") {
			msg.title = "tagflow - Task Rejected"
			msg.body = fmt.Sprintf("Task %s (%s) sent back by %s", p.text("task_id"), orUnknown(p.text("filename")), orUnknown(p.text("reviewer")))
			msg.tags = []string{"tagflow", "task", "rejected"}
			msg.priority = "high"
		}
		if comment := p.text("comment"); comment != "" {
			msg.body += "\nComment: " + comment
		}
		return msg, true
	case EventExportArchived:
		return message{
			title: "tagflow - Export Archived",
			body:  fmt.Sprintf("Export stored at s3://%s/%s", p.text("bucket"), p.text("key")),
			tags:  []string{"tagflow", "export", "archived"},
		}, true
	case EventTest:
		return message{
			title:    "tagflow - Test",
			body:     "Notification system test",
			tags:     []string{"tagflow", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := render(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
