package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out := mustRun(t, env, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "any_reference")

	target := filepath.Join(t.TempDir(), "config.toml")
	out = mustRun(t, nil, "config", "init", "--path", target)
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err := runCLI(t, nil, "config", "init", "--path", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	mustRun(t, nil, "config", "init", "--path", target, "--overwrite")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if strings.Contains(string(data), `secret_key = ""`) {
		t.Fatal("expected init to generate a secret key")
	}

	out = mustRun(t, nil, "config", "init", "--stdout", "--no-secret")
	requireContains(t, out, `secret_key = ""`)
	requireContains(t, out, "[workflow]")
}

func TestConfigValidateReportsMissingSecret(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, env, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "auth.secret_key is required") {
		t.Fatalf("expected secret key error, got %v", err)
	}
}
