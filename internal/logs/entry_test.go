package logs

import "testing"

func TestParseEntryAndFormat(t *testing.T) {
	line := `{"ts":"2026-01-02T03:04:06Z","level":"info","msg":"task finished","component":"tagging","task_id":7,"user_id":2,"event_type":"task_finished"}`
	entry, ok := ParseEntry(line)
	if !ok {
		t.Fatal("expected JSON line to parse")
	}
	if entry.TaskID != 7 || entry.EventType != "task_finished" || entry.Component != "tagging" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	want := "2026-01-02T03:04:06Z INFO  [tagging] task finished event_type=task_finished task_id=7 user_id=2"
	if got := entry.Format(); got != want {
		t.Fatalf("Format mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestParseEntryRejectsPlainText(t *testing.T) {
	for _, line := range []string{"", "plain", "[1,2]", "{broken"} {
		if _, ok := ParseEntry(line); ok {
			t.Fatalf("expected %q to be rejected", line)
		}
	}
}

func TestValidLevel(t *testing.T) {
	tests := map[string]bool{"debug": true, "INFO": true, "warning": true, "error": true, "fatal": false, "": false}
	for level, want := range tests {
		if got := ValidLevel(level); got != want {
			t.Errorf("ValidLevel(%q) = %v, want %v", level, got, want)
		}
	}
}
