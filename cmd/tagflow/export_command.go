package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tagflow/internal/archive"
	"tagflow/internal/fileutil"
	"tagflow/internal/tagging"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		output   string
		toStdout bool
		upload   bool
	)

	cmd := &cobra.Command{
		Use:   "export <music-id...>",
		Short: "Export reviewed tagging records as JSON",
		Long: "Export reviewed tasks of the given music items. The document is written to\n" +
			"paths.export_dir unless --output or --stdout is given; --archive also uploads it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			musicIDs, err := parseIDs(args, "music id")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(s *session) error {
				data, err := s.engine.ExportRecords(cmd.Context(), s.identity, musicIDs)
				if err != nil {
					return err
				}
				if toStdout {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}

				name := tagging.ExportFileName(time.Now())
				target := strings.TrimSpace(output)
				if target == "" {
					target = filepath.Join(s.cfg.Paths.ExportDir, name)
				}
				digest, err := fileutil.WriteFileAtomic(target, data, 0o644)
				if err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Wrote %s (%d bytes, sha256 %s)\n", target, digest.Size, digest.SHA256)

				if !upload {
					return nil
				}
				archiver, err := archive.New(s.cfg.Archive, s.logger)
				if errors.Is(err, archive.ErrDisabled) {
					return fmt.Errorf("archive upload requested but archive.enabled is false")
				}
				if err != nil {
					return err
				}
				if err := archiver.EnsureBucket(cmd.Context()); err != nil {
					return err
				}
				receipt, err := archiver.Upload(cmd.Context(), name, data)
				if err != nil {
					return err
				}
				s.engine.ExportArchived(cmd.Context(), receipt.Bucket, receipt.Key)
				if ctx.jsonOutput() {
					return writeJSON(cmd, receipt)
				}
				fmt.Fprintf(out, "Archived to s3://%s/%s\n", receipt.Bucket, receipt.Key)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: export_dir/tagging_records_<time>.json)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the document instead of writing a file")
	cmd.Flags().BoolVar(&upload, "archive", false, "Also upload the document to the archive bucket")
	return cmd
}
