package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/jedib0t/go-pretty/v6/text"

	"tagflow/internal/preflight"
	"tagflow/internal/store"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if plain != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", plain, want)
	}

	bare := renderStatusLine("API bind", statusInfo, "", false)
	if !strings.HasSuffix(bare, "[INFO]") {
		t.Fatalf("expected no trailing message, got %q", bare)
	}

	green := text.Colors{text.FgGreen}
	colored := renderStatusLine("Daemon", statusOK, "Running", true)
	if colored != green.Sprint(renderStatusLine("Daemon", statusOK, "Running", false)) {
		t.Fatalf("expected green line, got %q", colored)
	}
}

func TestTaskStatusKind(t *testing.T) {
	tests := []struct {
		status store.TaskStatus
		want   statusKind
	}{
		{store.TaskPending, statusInfo},
		{store.TaskTagged, statusWarn},
		{store.TaskReviewed, statusOK},
		{store.TaskRejected, statusError},
	}
	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			if got := taskStatusKind(tc.status); got != tc.want {
				t.Fatalf("taskStatusKind(%s) = %s, want %s", tc.status, got, tc.want)
			}
		})
	}
}

func TestCheckLines(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/data (read/write ok)"},
		{Name: "Archive", Passed: false, Detail: "bucket unreachable"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] /data") {
		t.Fatalf("expected ok line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] bucket unreachable") {
		t.Fatalf("expected error line, got %q", lines[1])
	}
}

func TestDaemonStateHonorsLock(t *testing.T) {
	env := setupCLITestEnv(t)
	cmdCtx := newCommandContext(&env.configPath, new(string), new(bool))
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}

	running, detail := daemonState(cfg)
	if running || detail != "Not running" {
		t.Fatalf("expected stopped daemon, got %v %q", running, detail)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()
	running, _ = daemonState(cfg)
	if !running {
		t.Fatal("expected held lock to report a running daemon")
	}
}
