package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tagflow/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
		toStdout   bool
		noSecret   bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Long:        "Write an annotated configuration with a freshly generated auth.secret_key.",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if !noSecret {
				generated, err := config.GenerateSecretKey()
				if err != nil {
					return err
				}
				secret = generated
			}
			out := cmd.OutOrStdout()
			if toStdout {
				_, err := fmt.Fprint(out, config.SampleConfig(secret))
				return err
			}

			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target, secret); err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			if noSecret {
				fmt.Fprintln(out, "Set auth.secret_key (or export TAGFLOW_SECRET_KEY) before running tagflow.")
			}
			fmt.Fprintln(out, "Set auth.bootstrap_password, then start the daemon with 'tagflow serve'.")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	flags.BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	flags.BoolVar(&toStdout, "stdout", false, "Print the configuration instead of writing it")
	flags.BoolVar(&noSecret, "no-secret", false, "Leave auth.secret_key empty")
	return cmd
}

func initTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			rows := [][]string{
				{"Database", cfg.DatabasePath()},
				{"Log file", cfg.LogFilePath()},
				{"Music root", cfg.Paths.MusicRoot},
				{"Export directory", cfg.Paths.ExportDir},
				{"API bind", cfg.Paths.APIBind},
				{"Bootstrap admin", orDash(cfg.Auth.BootstrapAdmin)},
				{"Open registration", yesNo(cfg.Auth.OpenRegistration)},
				{"Complete records required", yesNo(cfg.Workflow.RequireCompleteRecords)},
				{"Question delete policy", cfg.Workflow.QuestionDeletePolicy},
				{"FFprobe", orDash(cfg.Library.FFprobeBinary)},
				{"Archive enabled", yesNo(cfg.Archive.Enabled)},
				{"Notifications", orDash(cfg.Notifications.NtfyTopic)},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
