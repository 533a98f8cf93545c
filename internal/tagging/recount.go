package tagging

import (
	"context"

	"tagflow/internal/auth"
	"tagflow/internal/logging"
	"tagflow/internal/store"
)

// Recount recomputes valid tagging counts from reviewed tasks for musicIDs,
// or for every music item when none are given, and returns the corrections.
func (e *Engine) Recount(ctx context.Context, id auth.Identity, musicIDs ...int64) ([]store.CountDrift, error) {
	if err := id.Require(auth.CapAdmin, "recount tagging totals"); err != nil {
		return nil, err
	}
	var drifts []store.CountDrift
	err := e.store.WithTx(ctx, func(q *store.Queries) error {
		var err error
		drifts, err = q.ReconcileValidTaggingCounts(ctx, musicIDs...)
		return err
	})
	if err != nil {
		return nil, wrapOp("recount", err)
	}
	logger := e.log(ctx)
	for _, d := range drifts {
		logging.WarnWithContext(logger, "valid tagging count drift corrected", "count_drift",
			logging.Int64(logging.FieldMusicID, d.MusicID),
			logging.Int64("stored", d.Stored),
			logging.Int64("actual", d.Actual),
		)
	}
	return drifts, nil
}
