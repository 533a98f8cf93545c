package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tagflow/internal/logs"
)

const sampleLog = `{"ts":"2026-01-02T03:04:05Z","level":"info","msg":"api server listening","component":"daemon"}
{"ts":"2026-01-02T03:04:06Z","level":"info","msg":"task finished","component":"tagging","task_id":7,"event_type":"task_finished"}
not json at all
{"ts":"2026-01-02T03:04:07Z","level":"warn","msg":"valid tagging count drift corrected","component":"tagging","music_id":3,"event_type":"count_drift"}
{"ts":"2026-01-02T03:04:08Z","level":"info","msg":"task reviewed","component":"tagging","task_id":7,"event_type":"task_reviewed"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagflow.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "b" || result.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", result.Lines)
	}
	if result.Offset != int64(len("a\nb\nc\n")) {
		t.Fatalf("expected offset at end of file, got %d", result.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "absent.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTailFilters(t *testing.T) {
	path := writeLog(t, sampleLog)

	tests := []struct {
		name   string
		filter logs.Filter
		want   []string
	}{
		{name: "none", filter: logs.Filter{}, want: []string{"listening", "finished", "not json", "drift", "reviewed"}},
		{name: "event type", filter: logs.Filter{EventType: "task_reviewed"}, want: []string{"reviewed"}},
		{name: "task id", filter: logs.Filter{TaskID: 7}, want: []string{"finished", "reviewed"}},
		{name: "min level", filter: logs.Filter{MinLevel: "warn"}, want: []string{"drift"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10, Filter: tc.filter})
			if err != nil {
				t.Fatalf("tail: %v", err)
			}
			if len(result.Lines) != len(tc.want) {
				t.Fatalf("expected %d lines, got %#v", len(tc.want), result.Lines)
			}
			for i, want := range tc.want {
				if !strings.Contains(result.Lines[i], want) {
					t.Fatalf("line %d = %q, want substring %q", i, result.Lines[i], want)
				}
			}
		})
	}
}

func TestTailFromOffsetBeyondEnd(t *testing.T) {
	path := writeLog(t, "one\n")
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 1 << 20})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 4 {
		t.Fatalf("expected clamp to end, got %+v", result)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("expected initial line, got %#v", result.Lines)
	}

	done := make(chan logs.TailResult, 1)
	go func(offset int64) {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		done <- res
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case res := <-done:
		if len(res.Lines) != 1 || res.Lines[0] != "later" {
			t.Fatalf("unexpected follow lines: %#v", res.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestTailFollowHonorsCancel(t *testing.T) {
	path := writeLog(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := logs.Tail(ctx, path, logs.TailOptions{Offset: 0, Follow: true, Wait: time.Minute})
	if err == nil {
		t.Fatal("expected context error")
	}
}
