package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func TestNotifyTest(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "notify", "test")
	requireContains(t, out, "Notifications are disabled")

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Title") != "tagflow - Test" {
			t.Errorf("unexpected title %q", r.Header.Get("Title"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f, err := os.OpenFile(env.configPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	if _, err := f.WriteString("\n[notifications]\nntfy_topic = \"" + server.URL + "\"\n"); err != nil {
		t.Fatalf("append config: %v", err)
	}
	_ = f.Close()

	out = mustRun(t, env, "notify", "test")
	requireContains(t, out, "Test notification sent")
	if hits.Load() != 1 {
		t.Fatalf("expected one ntfy request, got %d", hits.Load())
	}
}
