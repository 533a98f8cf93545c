package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAuth()
	c.normalizeWorkflow()
	c.Library.FFprobeBinary = strings.TrimSpace(c.Library.FFprobeBinary)
	if c.Library.ProbeTimeoutSeconds == 0 {
		c.Library.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	c.normalizeArchive()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.MusicRoot, err = expandPath(c.Paths.MusicRoot); err != nil {
		return fmt.Errorf("paths.music_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAuth() {
	c.Auth.SecretKey = strings.TrimSpace(c.Auth.SecretKey)
	if c.Auth.SecretKey == "" {
		if value, ok := os.LookupEnv("TAGFLOW_SECRET_KEY"); ok {
			c.Auth.SecretKey = strings.TrimSpace(value)
		}
	}
	c.Auth.BootstrapAdmin = strings.TrimSpace(c.Auth.BootstrapAdmin)
	if c.Auth.BootstrapPassword == "" {
		if value, ok := os.LookupEnv("TAGFLOW_BOOTSTRAP_PASSWORD"); ok {
			c.Auth.BootstrapPassword = value
		}
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Auth.TokenTTLSeconds == 0 {
		c.Auth.TokenTTLSeconds = defaultTokenTTLSeconds
	}
}

func (c *Config) normalizeWorkflow() {
	c.Workflow.QuestionDeletePolicy = strings.ToLower(strings.TrimSpace(c.Workflow.QuestionDeletePolicy))
	if c.Workflow.QuestionDeletePolicy == "" {
		c.Workflow.QuestionDeletePolicy = defaultQuestionDeletePolicy
	}
	if c.Workflow.DefaultPageSize == 0 {
		c.Workflow.DefaultPageSize = defaultPageSize
	}
	if c.Workflow.MaxPageSize == 0 {
		c.Workflow.MaxPageSize = defaultMaxPageSize
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Endpoint = strings.TrimSpace(c.Archive.Endpoint)
	c.Archive.Bucket = strings.TrimSpace(c.Archive.Bucket)
	c.Archive.Prefix = strings.Trim(strings.TrimSpace(c.Archive.Prefix), "/")
	if c.Archive.AccessKeyID == "" {
		if value, ok := os.LookupEnv("TAGFLOW_ARCHIVE_ACCESS_KEY_ID"); ok {
			c.Archive.AccessKeyID = strings.TrimSpace(value)
		}
	}
	if c.Archive.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("TAGFLOW_ARCHIVE_SECRET_ACCESS_KEY"); ok {
			c.Archive.SecretAccessKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
