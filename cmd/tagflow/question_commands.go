package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagflow/internal/api"
	"tagflow/internal/store"
	"tagflow/internal/tagging"
)

func newQuestionCommand(ctx *commandContext) *cobra.Command {
	questionCmd := &cobra.Command{
		Use:   "question",
		Short: "Manage the question catalog",
	}
	questionCmd.AddCommand(newQuestionAddCommand(ctx))
	questionCmd.AddCommand(newQuestionListCommand(ctx))
	questionCmd.AddCommand(newQuestionUpdateCommand(ctx))
	questionCmd.AddCommand(newQuestionRemoveCommand(ctx))
	return questionCmd
}

func newQuestionAddCommand(ctx *commandContext) *cobra.Command {
	var in tagging.QuestionInput

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			return ctx.withSession(cmd, func(s *session) error {
				question, err := s.engine.CreateQuestion(cmd.Context(), s.identity, in)
				if err != nil {
					return err
				}
				return printQuestion(cmd, ctx, "Created", question)
			})
		},
	}

	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Question description")
	cmd.Flags().BoolVarP(&in.IsMultipleChoice, "multiple", "m", false, "Allow several options to be selected")
	cmd.Flags().StringArrayVarP(&in.Options, "option", "o", nil, "Option label (repeat for each option)")
	return cmd
}

func newQuestionUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		description string
		multiple    bool
		options     []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a question in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "question id")
			if err != nil {
				return err
			}
			var patch tagging.QuestionPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("multiple") {
				patch.IsMultipleChoice = &multiple
			}
			if flags.Changed("option") {
				patch.Options = append([]string{}, options...)
			}
			return ctx.withSession(cmd, func(s *session) error {
				question, err := s.engine.UpdateQuestion(cmd.Context(), s.identity, id, patch)
				if err != nil {
					return err
				}
				return printQuestion(cmd, ctx, "Updated", question)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVarP(&multiple, "multiple", "m", false, "Allow several options to be selected")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "Replacement option label (repeat for each option)")
	return cmd
}

func newQuestionRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "question id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				if err := s.engine.DeleteQuestion(cmd.Context(), s.identity, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed question %d\n", id)
				return nil
			})
		},
	}
}

func newQuestionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the question catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				questions, err := s.engine.ListQuestions(cmd.Context(), s.identity)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromQuestions(questions))
				}
				if len(questions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No questions defined")
					return nil
				}
				rows := make([][]string, 0, len(questions))
				for _, q := range questions {
					rows = append(rows, []string{
						fmt.Sprintf("%d", q.ID),
						q.Title,
						questionKind(q),
						strings.Join(q.Options, ", "),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Kind", "Options"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func printQuestion(cmd *cobra.Command, ctx *commandContext, verb string, q *store.Question) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, api.FromQuestion(q))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s question %d %q (%s: %s)\n", verb, q.ID, q.Title, questionKind(q), strings.Join(q.Options, ", "))
	return nil
}

func questionKind(q *store.Question) string {
	if q.IsMultipleChoice {
		return "multiple"
	}
	return "single"
}
