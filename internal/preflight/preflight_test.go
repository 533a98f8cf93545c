package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagflow/internal/config"
	"tagflow/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable(t *testing.T) {
	result := CheckDirectoryReadable("music", t.TempDir())
	if !result.Passed || !strings.HasSuffix(result.Detail, "(read ok)") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	result := CheckDatabase(context.Background(), st)
	if !result.Passed || result.Detail != cfg.DatabasePath()+" (schema v1, 1 migration(s))" {
		t.Fatalf("unexpected result %+v", result)
	}
	if CheckDatabase(context.Background(), nil).Passed {
		t.Fatal("expected failure for nil store")
	}
}

func TestCheckFFprobe(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	tests := []struct {
		name   string
		binary string
		passed bool
		detail string
	}{
		{name: "disabled", binary: "", passed: true, detail: "Disabled"},
		{name: "absolute path", binary: stub, passed: true, detail: stub},
		{name: "missing", binary: "clearly-not-present-ffprobe", detail: "not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckFFprobe(tc.binary)
			if result.Passed != tc.passed || !strings.Contains(result.Detail, tc.detail) {
				t.Fatalf("unexpected result %+v", result)
			}
		})
	}
}

func TestCheckArchive_Disabled(t *testing.T) {
	result := CheckArchive(context.Background(), config.Archive{})
	if !result.Passed || result.Detail != "Disabled" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckArchive_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := CheckArchive(context.Background(), config.Archive{
		Enabled:         true,
		Endpoint:        strings.TrimPrefix(srv.URL, "http://"),
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "tagflow",
	})
	if result.Passed {
		t.Fatalf("expected failure for rejected credentials, got %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Music root" {
		t.Fatalf("expected only the missing music root to fail, got %+v", failed)
	}

	if err := os.MkdirAll(cfg.Paths.MusicRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(context.Background(), cfg)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}
