package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tagflow/internal/accounts"
	"tagflow/internal/auth"
	"tagflow/internal/config"
	"tagflow/internal/library"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
	"tagflow/internal/services"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

type commandContext struct {
	configFlag *string
	asFlag     *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, asFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		asFlag:     asFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) actingUsername(cfg *config.Config) string {
	if c.asFlag != nil {
		if name := strings.TrimSpace(*c.asFlag); name != "" {
			return name
		}
	}
	return cfg.Auth.BootstrapAdmin
}

// session bundles the services a command runs against plus the identity it
// acts as.
type session struct {
	cfg      *config.Config
	store    *store.Store
	engine   *tagging.Engine
	accounts *accounts.Service
	library  *library.Service
	identity auth.Identity
	user     *store.User
	logger   *slog.Logger
}

// withSession opens the database, resolves the acting user, and runs fn.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  "warn",
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	engine := tagging.NewEngine(cfg, st, logger)
	engine.SetNotifier(notifications.NewService(cfg))

	s := &session{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		accounts: accounts.NewService(cfg, st, logger),
		library:  library.NewService(cfg, st, logger),
		logger:   logger,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := s.accounts.EnsureBootstrapAdmin(ctx); err != nil {
		return err
	}

	username := c.actingUsername(cfg)
	identity, user, err := s.accounts.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("acting user %q does not exist; pass --as or set auth.bootstrap_password", username)
		}
		return err
	}
	s.identity = identity
	s.user = user
	return fn(s)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, raw)
	}
	return id, nil
}

func parseIDs(args []string, label string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, label)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
