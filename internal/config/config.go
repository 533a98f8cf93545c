package config

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	MusicRoot string `toml:"music_root"`
	ExportDir string `toml:"export_dir"`
	APIBind   string `toml:"api_bind"`
}

// Auth contains credential and token settings.
type Auth struct {
	SecretKey         string `toml:"secret_key"`
	TokenTTLSeconds   int    `toml:"token_ttl_seconds"`
	BcryptCost        int    `toml:"bcrypt_cost"`
	BootstrapAdmin    string `toml:"bootstrap_admin"`
	BootstrapPassword string `toml:"bootstrap_password"`
	OpenRegistration  bool   `toml:"open_registration"`
}

// Workflow contains tagging workflow policy knobs.
type Workflow struct {
	// RequireCompleteRecords rejects finish while any record has an empty selection.
	RequireCompleteRecords bool `toml:"require_complete_records"`
	// QuestionDeletePolicy is "any_reference" or "active_reference".
	QuestionDeletePolicy string `toml:"question_delete_policy"`
	DefaultPageSize      int    `toml:"default_page_size"`
	MaxPageSize          int    `toml:"max_page_size"`
}

// Server contains HTTP transport settings.
type Server struct {
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
	RateLimitBurst     int     `toml:"rate_limit_burst"`
}

// Archive contains S3-compatible object storage settings for export uploads.
type Archive struct {
	Enabled         bool   `toml:"enabled"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Bucket          string `toml:"bucket"`
	UseSSL          bool   `toml:"use_ssl"`
	Prefix          string `toml:"prefix"`
}

// Notifications contains ntfy push settings for workflow events.
type Notifications struct {
	// NtfyTopic is the full topic URL, e.g. https://ntfy.sh/my-tagging.
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Library contains music catalog settings.
type Library struct {
	// FFprobeBinary enables duration probing at import when set.
	FFprobeBinary       string `toml:"ffprobe_binary"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tagflow.
//
// Configuration sections by subsystem:
//   - Paths: data, log, music, and export directories plus the API bind address
//   - Auth: token signing, password hashing, bootstrap admin
//   - Workflow: finish completeness and question deletion policies, paging
//   - Server: HTTP rate limiting
//   - Library: optional ffprobe duration probing at import
//   - Archive: optional export upload to object storage
//   - Notifications: optional ntfy pushes for task events
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Auth          Auth          `toml:"auth"`
	Workflow      Workflow      `toml:"workflow"`
	Server        Server        `toml:"server"`
	Library       Library       `toml:"library"`
	Archive       Archive       `toml:"archive"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tagflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// MusicRoot is never created; it belongs to whoever supplies the audio files.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "tagflow.db")
}

// LogFilePath returns the JSON log file the daemon writes.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "tagflow.log")
}

// LockPath returns the daemon single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "tagflowd.lock")
}

// TokenTTL returns the bearer token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the annotated sample configuration. A non-empty
// secretKey is filled into auth.secret_key.
func SampleConfig(secretKey string) string {
	if secretKey == "" {
		return sampleConfig
	}
	return strings.Replace(sampleConfig, `secret_key = ""`, fmt.Sprintf("secret_key = %q", secretKey), 1)
}

// GenerateSecretKey returns a random hex key suitable for auth.secret_key.
func GenerateSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateSample writes the sample configuration to path, creating parent
// directories as needed.
func CreateSample(path, secretKey string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(SampleConfig(secretKey)), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
