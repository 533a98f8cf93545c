package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tagflow/internal/accounts"
	"tagflow/internal/api"
	"tagflow/internal/archive"
	"tagflow/internal/config"
	"tagflow/internal/library"
	"tagflow/internal/logging"
	"tagflow/internal/server"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

// Services bundles the domain services the daemon serves. Archive is nil
// when export archiving is disabled.
type Services struct {
	Engine   *tagging.Engine
	Accounts *accounts.Service
	Library  *library.Service
	Archive  archive.Uploader
}

// Daemon coordinates the API server and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	api       *apiServer
	sessionID string
	archive   bool

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt atomic.Pointer[time.Time]
	cancel    context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, svc Services, sessionID string) (*Daemon, error) {
	if cfg == nil || st == nil || svc.Engine == nil || svc.Accounts == nil || svc.Library == nil {
		return nil, errors.New("daemon requires config, store, engine, accounts, and library")
	}
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     st,
		sessionID: sessionID,
		archive:   svc.Archive != nil,
		lockPath:  cfg.LockPath(),
		lock:      flock.New(cfg.LockPath()),
	}
	srv := server.New(server.Deps{
		Config:   cfg,
		Engine:   svc.Engine,
		Accounts: svc.Accounts,
		Library:  svc.Library,
		Archive:  svc.Archive,
		Status:   d.Status,
		Logger:   logger,
	})
	d.api = newAPIServer(cfg.Paths.APIBind, srv.Handler(), logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another tagflow daemon instance is already running (lock %s)", d.lockPath)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel

	now := time.Now().UTC()
	d.startedAt.Store(&now)
	d.running.Store(true)
	d.logger.Info("tagflow daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.addr()),
		logging.Event("daemon_started"),
	)
	return nil
}

// Stop stops the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tagflow daemon stopped")
}

// Close stops the daemon. The store belongs to the caller.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Addr returns the API listener address, or "" when not serving.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(_ context.Context) api.Status {
	status := api.Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		SessionID:    d.sessionID,
		Archive:      d.archive,
	}
	if started := d.startedAt.Load(); started != nil {
		status.StartedAt = started.Format(time.RFC3339)
	}
	return status
}
