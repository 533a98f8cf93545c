package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tagflow/internal/logs"
)

const followWait = 2 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if filter.MinLevel != "" && !logs.ValidLevel(filter.MinLevel) {
				return fmt.Errorf("invalid --level %q (use debug, info, warn, or error)", filter.MinLevel)
			}
			path := cfg.LogFilePath()
			out := cmd.OutOrStdout()
			emit := func(result logs.TailResult) {
				for _, line := range result.Lines {
					if !raw {
						if entry, ok := logs.ParseEntry(line); ok {
							line = entry.Format()
						}
					}
					fmt.Fprintln(out, line)
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			emit(result)
			for follow {
				result, err = logs.Tail(runCtx, path, logs.TailOptions{
					Offset: result.Offset,
					Follow: true,
					Wait:   followWait,
					Filter: filter,
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}
				emit(result)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&lines, "lines", "n", 20, "Number of matching lines to show")
	flags.BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	flags.BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	flags.StringVar(&filter.EventType, "event", "", "Only show records with this event_type")
	flags.StringVar(&filter.MinLevel, "level", "", "Only show records at or above this level")
	flags.Int64Var(&filter.TaskID, "task", 0, "Only show records for this task id")
	return cmd
}
