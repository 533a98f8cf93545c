package preflight

import (
	"context"

	"tagflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir),
		// Audio files are only read; imports never write under the music root.
		CheckDirectoryReadable("Music root", cfg.Paths.MusicRoot),
	}
	results = append(results,
		CheckFFprobe(cfg.Library.FFprobeBinary),
		CheckArchive(ctx, cfg.Archive),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
