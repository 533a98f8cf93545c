package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagflow/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	musicRoot  string
	exportDir  string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("TAGFLOW_SECRET_KEY", "")
	t.Setenv("TAGFLOW_BOOTSTRAP_PASSWORD", "")

	env := &cliTestEnv{
		configPath: filepath.Join(base, "tagflow.toml"),
		musicRoot:  filepath.Join(base, "music"),
		exportDir:  filepath.Join(base, "exports"),
		dataDir:    filepath.Join(base, "data"),
	}
	if err := os.MkdirAll(env.musicRoot, 0o755); err != nil {
		t.Fatalf("mkdir music root: %v", err)
	}

	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
music_root = %q
export_dir = %q
api_bind = "127.0.0.1:0"

[auth]
secret_key = %q
bcrypt_cost = 4
bootstrap_admin = "admin"
bootstrap_password = "admin-pass"

[logging]
level = "error"
`, env.dataDir, filepath.Join(base, "logs"), env.musicRoot, env.exportDir, testsupport.TestSecret)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun fails the test when the command errors and returns stdout.
func mustRun(t *testing.T, env *cliTestEnv, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, env, args...)
	if err != nil {
		t.Fatalf("tagflow %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return out
}

func decodeJSON(t *testing.T, raw string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
