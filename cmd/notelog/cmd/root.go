// Package cmd provides the CLI commands for notelog.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notelog/internal/config"
	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/logging"
	"github.com/Aman-CERP/notelog/pkg/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logFile    string
	level      string
}

// NewRootCmd creates the root command for the notelog CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notelog",
		Short: "Process-wide file logging for note and summary tools",
		Long: `notelog initializes the shared log file used by note and summary
generation tools, and appends records to it from scripts.

'notelog setup' empties the summary file and starts a new run in the log
file (logfile.log by default). 'notelog info' and 'notelog error' append
records to the same file.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("notelog version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: .notelog.yaml in the working directory)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path (overrides logging.file)")
	cmd.PersistentFlags().StringVar(&opts.level, "level", "", "Minimum log level: info, warn, error (never below info)")

	cmd.AddCommand(newSetupCmd(opts))
	cmd.AddCommand(newLogCmd(opts, "info"))
	cmd.AddCommand(newLogCmd(opts, "error"))
	cmd.AddCommand(newDoctorCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		_, _ = fmt.Fprint(os.Stderr, nlerrors.FormatForCLI(err))
	}
	return err
}

// loadConfig loads configuration for the working directory and applies the
// persistent flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nlerrors.InternalError("failed to get current directory", err)
	}

	cfg, err := config.LoadFile(cwd, o.configFile)
	if err != nil {
		return nil, err
	}

	if o.logFile != "" {
		cfg.Logging.File = o.logFile
	}
	if o.level != "" {
		if !logging.ValidLevel(o.level) {
			return nil, nlerrors.New(nlerrors.ErrCodeInvalidLevel, fmt.Sprintf("invalid level %q", o.level), nil).
				WithSuggestion("Use one of: info, warn, error")
		}
		cfg.Logging.Level = o.level
	}

	return cfg, nil
}

// newFacility builds the process-wide facility for cfg.
func newFacility(cfg *config.Config) *logging.Facility {
	return logging.NewFacility(cfg.LogConfig(), logging.WithInstallDefault())
}
