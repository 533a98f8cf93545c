package config

import (
	"errors"
	"fmt"
)

// minSecretKeyLength keeps HS256 keys from being trivially guessable.
const minSecretKeyLength = 16

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if c.Library.ProbeTimeoutSeconds < 0 {
		return errors.New("library.probe_timeout_seconds must not be negative")
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeoutSeconds <= 0 {
		return errors.New("notifications.request_timeout_seconds must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.SecretKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("auth.secret_key is required. Set TAGFLOW_SECRET_KEY env var or edit %s (create with 'tagflow config init')", defaultPath)
	}
	if len(c.Auth.SecretKey) < minSecretKeyLength {
		return fmt.Errorf("auth.secret_key must be at least %d characters", minSecretKeyLength)
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		return errors.New("auth.token_ttl_seconds must be positive")
	}
	// bcrypt accepts costs in [4, 31].
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	switch c.Workflow.QuestionDeletePolicy {
	case QuestionDeleteAnyReference, QuestionDeleteActiveReference:
	default:
		return fmt.Errorf("workflow.question_delete_policy must be %q or %q", QuestionDeleteAnyReference, QuestionDeleteActiveReference)
	}
	if c.Workflow.MaxPageSize <= 0 {
		return errors.New("workflow.max_page_size must be positive")
	}
	if c.Workflow.DefaultPageSize <= 0 {
		return errors.New("workflow.default_page_size must be positive")
	}
	if c.Workflow.DefaultPageSize > c.Workflow.MaxPageSize {
		return errors.New("workflow.default_page_size must not exceed workflow.max_page_size")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerSecond < 0 {
		return errors.New("server.rate_limit_per_second must be >= 0")
	}
	if c.Server.RateLimitPerSecond > 0 && c.Server.RateLimitBurst <= 0 {
		return errors.New("server.rate_limit_burst must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if !c.Archive.Enabled {
		return nil
	}
	if c.Archive.Endpoint == "" {
		return errors.New("archive.endpoint must be set when archive.enabled is true")
	}
	if c.Archive.Bucket == "" {
		return errors.New("archive.bucket must be set when archive.enabled is true")
	}
	if c.Archive.AccessKeyID == "" || c.Archive.SecretAccessKey == "" {
		return errors.New("archive.access_key_id and archive.secret_access_key must be set when archive.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
