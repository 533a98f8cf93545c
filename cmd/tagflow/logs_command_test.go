package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommandFormatsAndFilters(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(filepath.Dir(env.configPath), "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	content := `{"ts":"2026-01-02T03:04:05Z","level":"info","msg":"api server listening","component":"daemon"}
{"ts":"2026-01-02T03:04:06Z","level":"info","msg":"task reviewed","component":"tagging","task_id":4,"event_type":"task_reviewed"}
`
	if err := os.WriteFile(filepath.Join(logDir, "tagflow.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := mustRun(t, env, "logs")
	requireContains(t, out, "INFO  [daemon] api server listening")
	requireContains(t, out, "task_id=4")

	out = mustRun(t, env, "logs", "--event", "task_reviewed")
	if strings.Contains(out, "listening") {
		t.Fatalf("expected filter to drop unrelated lines, got %q", out)
	}
	requireContains(t, out, "task reviewed")

	out = mustRun(t, env, "logs", "--raw", "-n", "1")
	requireContains(t, out, `"event_type":"task_reviewed"`)

	if _, _, err := runCLI(t, env, "logs", "--level", "loud"); err == nil {
		t.Fatal("expected invalid level error")
	}
}
