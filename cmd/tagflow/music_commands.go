package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tagflow/internal/api"
	"tagflow/internal/library"
)

func newMusicCommand(ctx *commandContext) *cobra.Command {
	musicCmd := &cobra.Command{
		Use:   "music",
		Short: "Manage the music library",
	}
	musicCmd.AddCommand(newMusicImportCommand(ctx))
	musicCmd.AddCommand(newMusicListCommand(ctx))
	musicCmd.AddCommand(newMusicRemoveCommand(ctx))
	return musicCmd
}

func newMusicImportCommand(ctx *commandContext) *cobra.Command {
	var listFile string

	cmd := &cobra.Command{
		Use:   "import [path...]",
		Short: "Register audio files by path",
		Long: "Register .mp3 and .wav files. Relative paths resolve under paths.music_root.\n" +
			"Use --from to read a JSON array of paths instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := append([]string(nil), args...)
			if strings.TrimSpace(listFile) != "" {
				fromFile, err := readPathList(listFile)
				if err != nil {
					return err
				}
				paths = append(paths, fromFile...)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no paths given; pass paths as arguments or use --from")
			}
			return ctx.withSession(cmd, func(s *session) error {
				result, err := s.library.ImportPaths(cmd.Context(), s.identity, paths)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromImportResult(result))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d, failed %d\n", result.SuccessCount, result.ErrorCount)
				for _, failure := range result.ErrorPaths {
					fmt.Fprintf(out, "  skipped %s\n", failure)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&listFile, "from", "f", "", "JSON file holding an array of paths")
	return cmd
}

func readPathList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open path list: %w", err)
	}
	defer file.Close()
	return library.DecodePathList(file)
}

func newMusicListCommand(ctx *commandContext) *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List music items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				items, err := s.library.List(cmd.Context(), s.identity, keyword)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromMusicList(items))
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No music found")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, m := range items {
					rows = append(rows, []string{
						strconv.FormatInt(m.ID, 10),
						m.Filename,
						formatDuration(m.DurationSeconds),
						strconv.FormatInt(m.ValidTaggingCount, 10),
						m.Filepath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Length", "Reviewed", "Path"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Filter by filename substring")
	return cmd
}

func newMusicRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a music item with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "music id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				if err := s.library.Delete(cmd.Context(), s.identity, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed music %d\n", id)
				return nil
			})
		},
	}
}

// formatDuration renders seconds as m:ss, or "-" when unknown.
func formatDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	total := int(*seconds + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
