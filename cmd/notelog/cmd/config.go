package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/notelog/configs"
	"github.com/Aman-CERP/notelog/internal/config"
	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/output"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage notelog configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/notelog/config.yaml)
  3. Project config (.notelog.yaml, or --config)
  4. .env in the working directory
  5. Environment variables (NOTELOG_*)
  6. --log-file and --level flags`,
		Example: `  # Create user config from template
  notelog config init

  # Show effective configuration
  notelog config show

  # Print user config file path
  notelog config path

  # Undo the last 'config init --force'
  notelog config restore`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create the user configuration file at ~/.config/notelog/config.yaml
(or $XDG_CONFIG_HOME/notelog/config.yaml), or with --project a .notelog.yaml
in the working directory.

An existing file is left alone unless --force is given, in which case it is
backed up first.`,
		Example: `  # Create user config
  notelog config init

  # Create .notelog.yaml here, replacing any existing one
  notelog config init --project --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			template := configs.UserConfigTemplate
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return nlerrors.InternalError("failed to get current directory", err)
				}
				path = filepath.Join(cwd, config.ProjectConfigFile)
				template = configs.ProjectConfigTemplate
			}
			return runConfigInit(cmd, path, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration (a backup is kept)")
	cmd.Flags().BoolVar(&project, "project", false, "Create .notelog.yaml in the working directory instead")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path, template string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	var backupPath string
	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to replace it (a backup is kept)")
			return nil
		}
		backupPath, err = config.BackupConfig(path)
		if err != nil {
			return nlerrors.New(nlerrors.ErrCodeConfigWrite, "failed to back up config", err).
				WithDetail("path", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nlerrors.New(nlerrors.ErrCodeConfigWrite, "failed to create config directory", err).
			WithDetail("path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return nlerrors.New(nlerrors.ErrCodeConfigWrite, "failed to write config file", err).
			WithDetail("path", path)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	if backupPath != "" {
		out.Statusf("💾", "Backup: %s", backupPath)
	}
	out.Status("💡", "Run 'notelog config show' to verify")
	return nil
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, config files, .env, environment variables and flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return nlerrors.InternalError("failed to marshal config", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	var project bool

	cmd := &cobra.Command{
		Use:   "restore [backup-file]",
		Short: "Restore a configuration backup",
		Long: `Restore the user configuration (or with --project, .notelog.yaml) from a
backup made by 'config init --force'. Without an argument the newest backup is
used. The current file is itself backed up first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			path := config.GetUserConfigPath()
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return nlerrors.InternalError("failed to get current directory", err)
				}
				path = filepath.Join(cwd, config.ProjectConfigFile)
			}

			var backup string
			if len(args) == 1 {
				backup = args[0]
			} else {
				backups, err := config.ListBackups(path)
				if err != nil {
					return nlerrors.New(nlerrors.ErrCodeConfigNotFound, "failed to list backups", err).
						WithDetail("path", path)
				}
				if len(backups) == 0 {
					return nlerrors.New(nlerrors.ErrCodeConfigNotFound, "no configuration backups found", nil).
						WithDetail("path", path)
				}
				backup = backups[0]
			}

			if err := config.RestoreConfig(path, backup); err != nil {
				return nlerrors.New(nlerrors.ErrCodeConfigWrite, "failed to restore config", err).
					WithDetail("path", path)
			}

			out.Success("Restored configuration")
			out.Statusf("📁", "Location: %s", path)
			out.Statusf("💾", "From: %s", backup)
			return nil
		},
	}

	cmd.Flags().BoolVar(&project, "project", false, "Restore .notelog.yaml in the working directory instead")

	return cmd
}
