package tagging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tagflow/internal/config"
	"tagflow/internal/logging"
	"tagflow/internal/notifications"
	"tagflow/internal/services"
	"tagflow/internal/store"
)

// Policy holds the configurable workflow rules.
type Policy struct {
	// RequireCompleteRecords makes finish reject tasks with empty records.
	RequireCompleteRecords bool
	// QuestionDeletePolicy is config.QuestionDeleteAnyReference or
	// config.QuestionDeleteActiveReference.
	QuestionDeletePolicy string
	DefaultPageSize      int
	MaxPageSize          int
}

// PolicyFromConfig extracts the workflow policy from cfg.
func PolicyFromConfig(cfg *config.Config) Policy {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Policy{
		RequireCompleteRecords: cfg.Workflow.RequireCompleteRecords,
		QuestionDeletePolicy:   cfg.Workflow.QuestionDeletePolicy,
		DefaultPageSize:        cfg.Workflow.DefaultPageSize,
		MaxPageSize:            cfg.Workflow.MaxPageSize,
	}
}

// Engine coordinates tagging workflow operations over the store.
type Engine struct {
	store    *store.Store
	policy   Policy
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time
}

// NewEngine constructs an engine using the workflow policy from cfg.
func NewEngine(cfg *config.Config, st *store.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:    st,
		policy:   PolicyFromConfig(cfg),
		logger:   logging.NewComponentLogger(logger, "tagging"),
		notifier: notifications.Noop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier routes workflow events to n. A nil n disables publishing.
func (e *Engine) SetNotifier(n notifications.Service) {
	if n == nil {
		n = notifications.Noop()
	}
	e.notifier = n
}

// notify publishes after a committed change. Delivery failures are logged
// and never fail the operation.
func (e *Engine) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := e.notifier.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(e.log(ctx), "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.Error(err),
		)
	}
}

// Policy returns the active workflow policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}

func notFound(entity string, id int64) error {
	return &services.NotFoundError{Entity: entity, ID: id}
}

func invalid(entity string, id int64, field, msg string) error {
	return &services.ValidationError{Entity: entity, ID: id, Field: field, Msg: msg}
}

func duplicateIDs(ids []int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// wrapOp returns workflow errors unchanged and adds op context to
// infrastructure failures.
func wrapOp(op string, err error) error {
	if err == nil || services.Kind(err) != services.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
