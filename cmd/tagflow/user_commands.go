package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagflow/internal/accounts"
	"tagflow/internal/api"
	"tagflow/internal/auth"
	"tagflow/internal/store"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	userCmd.AddCommand(newUserAddCommand(ctx))
	userCmd.AddCommand(newUserListCommand(ctx))
	return userCmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var password string
	var role string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				user, err := s.accounts.Register(cmd.Context(), s.identity, accounts.Registration{
					Username: args[0],
					Password: password,
					Role:     role,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromUser(user))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %d)\n", user.Role, user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the new account")
	cmd.Flags().StringVarP(&role, "role", "r", string(auth.RoleTagger), "Role: tagger, reviewer, or admin")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserListCommand(ctx *commandContext) *cobra.Command {
	var filter store.UserFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				users, err := s.accounts.List(cmd.Context(), s.identity, filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromUsers(users))
				}
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No users found")
					return nil
				}
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{
						fmt.Sprintf("%d", u.ID),
						u.Username,
						u.Role,
						u.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Username", "Role", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Role, "role", "", "Only list users with this role")
	cmd.Flags().StringVarP(&filter.Keyword, "keyword", "k", "", "Filter by username substring")
	return cmd
}
