package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagflow/internal/api"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Assign, inspect, and drive tagging tasks",
	}
	taskCmd.AddCommand(newTaskAssignCommand(ctx))
	taskCmd.AddCommand(newTaskListCommand(ctx))
	taskCmd.AddCommand(newTaskShowCommand(ctx))
	taskCmd.AddCommand(newTaskAnswerCommand(ctx))
	taskCmd.AddCommand(newTaskFinishCommand(ctx))
	taskCmd.AddCommand(newTaskReviewCommand(ctx))
	taskCmd.AddCommand(newTaskRemoveCommand(ctx))
	taskCmd.AddCommand(newTaskRecountCommand(ctx))
	return taskCmd
}

func newTaskAssignCommand(ctx *commandContext) *cobra.Command {
	var (
		musicID     int64
		questionIDs []int64
		taggers     []string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Fan a music item out to taggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				taggerIDs, err := resolveUserIDs(cmd.Context(), s, taggers)
				if err != nil {
					return err
				}
				ids, err := s.engine.Assign(cmd.Context(), s.identity, tagging.Assignment{
					MusicID:     musicID,
					QuestionIDs: questionIDs,
					TaggerIDs:   taggerIDs,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.AssignResponse{TaskIDs: ids})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d task(s): %s\n", len(ids), joinInt64(ids))
				return nil
			})
		},
	}

	cmd.Flags().Int64VarP(&musicID, "music", "m", 0, "Music item id")
	cmd.Flags().Int64SliceVarP(&questionIDs, "question", "q", nil, "Question id (repeat or comma-separate; order is kept)")
	cmd.Flags().StringSliceVarP(&taggers, "tagger", "t", nil, "Tagger username or id (repeat or comma-separate)")
	_ = cmd.MarkFlagRequired("music")
	return cmd
}

// resolveUserIDs accepts numeric ids and usernames interchangeably.
func resolveUserIDs(ctx context.Context, s *session, refs []string) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		_, user, err := s.accounts.Lookup(ctx, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	var (
		query  tagging.TaskQuery
		tagger string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				if tagger != "" {
					ids, err := resolveUserIDs(cmd.Context(), s, []string{tagger})
					if err != nil {
						return err
					}
					query.TaggerID = ids[0]
				}
				page, err := s.engine.ListTasks(cmd.Context(), s.identity, query)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromTaskPage(page))
				}
				out := cmd.OutOrStdout()
				if len(page.Items) == 0 {
					fmt.Fprintln(out, "No tasks found")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Music", "Tagger", "Status", "Reviewer", "Created"},
					taskRows(page.Items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "Page %d, %d of %d task(s)\n", page.Page, len(page.Items), page.Total)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&query.Keyword, "keyword", "k", "", "Match music filename or usernames")
	flags.StringVarP(&query.Status, "status", "s", "", "Filter by status (pending, tagged, rejected, reviewed)")
	flags.StringVar(&tagger, "tagger", "", "Filter by tagger username or id")
	flags.Int64Var(&query.MusicID, "music", 0, "Filter by music item id")
	flags.IntVar(&query.Page, "page", 1, "Page number")
	flags.IntVar(&query.PageSize, "page-size", 0, "Page size (default: workflow.default_page_size)")
	return cmd
}

func taskRows(tasks []*store.Task) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.MusicFilename,
			t.TaggerName,
			string(t.Status),
			orDash(t.ReviewerName),
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func newTaskShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				detail, err := s.engine.Task(cmd.Context(), s.identity, id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromTaskDetail(detail))
				}
				printTaskDetail(cmd, detail)
				return nil
			})
		},
	}
}

func printTaskDetail(cmd *cobra.Command, detail *tagging.TaskDetail) {
	out := cmd.OutOrStdout()
	t := detail.Task
	fmt.Fprintf(out, "Task %d: %s\n", t.ID, t.MusicFilename)
	fmt.Fprintf(out, "  Path:     %s\n", t.MusicFilepath)
	fmt.Fprintf(out, "  Tagger:   %s\n", t.TaggerName)
	fmt.Fprintf(out, "  Status:   %s\n", t.Status)
	if t.ReviewerName != "" {
		fmt.Fprintf(out, "  Reviewer: %s\n", t.ReviewerName)
	}
	if t.ReviewComment != "" {
		fmt.Fprintf(out, "  Comment:  %s\n", t.ReviewComment)
	}
	rows := make([][]string, 0, len(detail.Records))
	for _, r := range detail.Records {
		kind := "single"
		if r.IsMultipleChoice {
			kind = "multiple"
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.QuestionTitle,
			kind,
			strings.Join(r.Options, ", "),
			orDash(strings.Join(r.Selected, ", ")),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Record", "Question", "Kind", "Options", "Selected"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}

func newTaskAnswerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "answer <record-id> [option...]",
		Short: "Replace a record's selected options",
		Long:  "Replace a record's selected options. Passing no options clears the selection.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "record id")
			if err != nil {
				return err
			}
			selected := append([]string{}, args[1:]...)
			return ctx.withSession(cmd, func(s *session) error {
				record, err := s.engine.SetSelection(cmd.Context(), s.identity, id, selected)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromRecord(record))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Record %d (%s): %s\n", record.ID, record.QuestionTitle, orDash(strings.Join(record.Selected, ", ")))
				return nil
			})
		},
	}
}

func newTaskFinishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finish <id>",
		Short: "Submit a task for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				task, err := s.engine.Finish(cmd.Context(), s.identity, id)
				if err != nil {
					return err
				}
				return printTaskStatus(cmd, ctx, task)
			})
		},
	}
}

func newTaskReviewCommand(ctx *commandContext) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "review <id> <agreed|disagreed>",
		Short: "Approve or reject a tagged task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			result, err := tagging.ParseReviewResult(args[1])
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				task, err := s.engine.Review(cmd.Context(), s.identity, id, result, comment)
				if err != nil {
					return err
				}
				return printTaskStatus(cmd, ctx, task)
			})
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Review comment")
	return cmd
}

func printTaskStatus(cmd *cobra.Command, ctx *commandContext, task *store.Task) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, api.FromTask(task))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", task.ID, task.Status)
	return nil
}

func newTaskRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an unreviewed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				if err := s.engine.DeleteTask(cmd.Context(), s.identity, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed task %d\n", id)
				return nil
			})
		},
	}
}

func newTaskRecountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recount [music-id...]",
		Short: "Recompute reviewed-task totals from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args, "music id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				drift, err := s.engine.Recount(cmd.Context(), s.identity, ids...)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromDrift(drift))
				}
				out := cmd.OutOrStdout()
				if len(drift) == 0 {
					fmt.Fprintln(out, "All totals consistent")
					return nil
				}
				rows := make([][]string, 0, len(drift))
				for _, d := range drift {
					rows = append(rows, []string{
						strconv.FormatInt(d.MusicID, 10),
						d.Filepath,
						strconv.FormatInt(d.Stored, 10),
						strconv.FormatInt(d.Actual, 10),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Music", "Path", "Stored", "Actual"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func joinInt64(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
