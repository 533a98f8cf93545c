package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"

	"tagflow/internal/accounts"
	"tagflow/internal/archive"
	"tagflow/internal/config"
	"tagflow/internal/daemon"
	"tagflow/internal/library"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
	"tagflow/internal/preflight"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tagflow daemon and blocks until SIGINT, SIGTERM, or
// cancellation of cmdCtx.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		FilePath:    cfg.LogFilePath(),
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	sessionID := uuid.NewString()
	logger = logger.With(logging.String("session_id", sessionID))

	logPreflight(signalCtx, logger, cfg)

	pidPath := filepath.Join(cfg.Paths.DataDir, "tagflowd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer st.Close()

	acct := accounts.NewService(cfg, st, logger)
	created, err := acct.EnsureBootstrapAdmin(signalCtx)
	if err != nil {
		return err
	}
	if created {
		logger.Info("bootstrap admin created",
			logging.String("username", cfg.Auth.BootstrapAdmin),
			logging.Event("bootstrap_admin_created"),
		)
	}

	uploader, err := openArchive(signalCtx, cfg, logger)
	if err != nil {
		return err
	}

	engine := tagging.NewEngine(cfg, st, logger)
	engine.SetNotifier(notifications.NewService(cfg))

	d, err := daemon.New(cfg, st, logger, daemon.Services{
		Engine:   engine,
		Accounts: acct,
		Library:  library.NewService(cfg, st, logger),
		Archive:  uploader,
	}, sessionID)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("tagflow daemon shutting down")
	return nil
}

// openArchive returns nil when archiving is disabled. The Uploader interface
// must stay a nil interface in that case, not a typed nil pointer.
func openArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger) (archive.Uploader, error) {
	archiver, err := archive.New(cfg.Archive, logger)
	if errors.Is(err, archive.ErrDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := archiver.EnsureBucket(ctx); err != nil {
		logging.WarnWithContext(logger, "export archive unavailable", "archive_unavailable",
			logging.Error(err),
			logging.String("endpoint", cfg.Archive.Endpoint),
		)
	}
	return archiver, nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
