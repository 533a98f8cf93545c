package testsupport

import (
	"path/filepath"
	"testing"

	"tagflow/internal/config"
)

// TestSecret is the signing key placed in generated test configs.
const TestSecret = "0123456789abcdef-test-secret"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.MusicRoot = filepath.Join(base, "music")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Auth.SecretKey = TestSecret
	cfgVal.Auth.BcryptCost = 4
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithRequireCompleteRecords toggles the finish completeness policy.
func WithRequireCompleteRecords(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.RequireCompleteRecords = enabled
	}
}

// WithQuestionDeletePolicy overrides workflow.question_delete_policy.
func WithQuestionDeletePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.QuestionDeletePolicy = policy
	}
}

// WithOpenRegistration toggles unauthenticated self-registration.
func WithOpenRegistration(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.OpenRegistration = enabled
	}
}

// WithBootstrapAdmin sets the bootstrap admin credentials.
func WithBootstrapAdmin(username, password string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Auth.BootstrapAdmin = username
		b.cfg.Auth.BootstrapPassword = password
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WithRateLimit overrides the per-client HTTP rate limit. Zero disables it.
func WithRateLimit(perSecond float64, burst int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.RateLimitPerSecond = perSecond
		b.cfg.Server.RateLimitBurst = burst
	}
}
