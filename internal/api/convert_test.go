package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

func TestFromTaskOptionalFields(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	task := &store.Task{
		ID:        7,
		MusicID:   3,
		TaggerID:  4,
		Status:    store.TaskPending,
		CreatorID: 1,
		CreatedAt: created,
	}

	dto := FromTask(task)
	if dto.TaggedAt != nil || dto.ReviewedAt != nil || dto.ReviewerID != nil {
		t.Fatalf("expected nil optional fields, got %+v", dto)
	}
	if dto.CreatedAt != "2026-05-01T10:00:00.000Z" {
		t.Fatalf("CreatedAt = %q", dto.CreatedAt)
	}

	reviewer := int64(2)
	reviewed := created.Add(time.Hour)
	task.Status = store.TaskReviewed
	task.TaggedAt = &created
	task.ReviewedAt = &reviewed
	task.ReviewerID = &reviewer

	dto = FromTask(task)
	if dto.ReviewedAt == nil || *dto.ReviewedAt != "2026-05-01T11:00:00.000Z" || *dto.ReviewerID != 2 {
		t.Fatalf("unexpected reviewed fields %+v", dto)
	}
}

func TestEmptyCollectionsEncodeAsArrays(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"record selection", FromRecord(&store.Record{ID: 1}), `"selected_options":[]`},
		{"question options", FromQuestion(&store.Question{ID: 1}), `"options":[]`},
		{"task page", FromTaskPage(&tagging.TaskPage{Page: 1, PageSize: 20}), `"items":[]`},
		{"detail records", FromTaskDetail(&tagging.TaskDetail{Task: &store.Task{ID: 1}}), `"records":[]`},
		{"import ids", FromImportResult(nil), `"success_ids":[]`},
		{"drift", FromDrift(nil), `[]`},
		{"users", FromUsers(nil), `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.payload)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Fatalf("%s does not contain %s", data, tt.want)
			}
		})
	}
}

func TestFromUserOmitsCredentials(t *testing.T) {
	data, err := json.Marshal(FromUser(&store.User{ID: 1, Username: "ada", PasswordHash: "$2a$secret", Role: "admin"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("password hash leaked: %s", data)
	}
}
