package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tagflow/internal/config"
	"tagflow/internal/preflight"
	"tagflow/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, path, and workflow status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			running, detail := daemonState(cfg)
			kind := statusWarn
			if running {
				kind = statusOK
			}
			fmt.Fprintln(stdout, renderStatusLine("Daemon", kind, detail, colorize))
			fmt.Fprintln(stdout, renderStatusLine("API bind", statusInfo, cfg.Paths.APIBind, colorize))

			st, openErr := store.Open(cfg)
			if openErr == nil {
				defer st.Close()
			}

			checks := preflight.RunAll(cmd.Context(), cfg)
			if openErr != nil {
				checks = append(checks, preflight.Result{Name: "Database", Detail: openErr.Error()})
			} else {
				checks = append(checks, preflight.CheckDatabase(cmd.Context(), st))
			}
			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range checkLines(checks, colorize) {
				fmt.Fprintln(stdout, line)
			}

			if openErr != nil {
				return nil
			}
			counts, err := taskCounts(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Tasks", colorize) {
				fmt.Fprintln(stdout, line)
			}
			sum := 0
			for _, c := range counts {
				sum += c.total
				fmt.Fprintln(stdout, renderStatusLine(string(c.status), taskStatusKind(c.status), fmt.Sprintf("%d task(s)", c.total), colorize))
			}
			fmt.Fprintln(stdout, renderStatusLine("total", statusInfo, strconv.Itoa(sum), colorize))
			return nil
		},
	}
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

// daemonState probes the daemon lock. A lock we can take means no daemon
// holds it.
func daemonState(cfg *config.Config) (bool, string) {
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return false, fmt.Sprintf("unknown (%v)", err)
	}
	if locked {
		_ = lock.Unlock()
		return false, "Not running"
	}
	pidPath := filepath.Join(cfg.Paths.DataDir, "tagflowd.pid")
	if raw, err := os.ReadFile(pidPath); err == nil {
		if pid := strings.TrimSpace(string(raw)); pid != "" {
			return true, "Running (pid " + pid + ")"
		}
	}
	return true, "Running"
}

type statusCount struct {
	status store.TaskStatus
	total  int
}

func taskCounts(ctx context.Context, st *store.Store) ([]statusCount, error) {
	statuses := store.AllTaskStatuses()
	counts := make([]statusCount, 0, len(statuses))
	for _, status := range statuses {
		_, total, err := st.ListTasks(ctx, store.TaskFilter{Status: status, Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("count %s tasks: %w", status, err)
		}
		counts = append(counts, statusCount{status: status, total: total})
	}
	return counts, nil
}
