package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/output"
	"github.com/Aman-CERP/notelog/pkg/version"
)

func newSetupCmd(opts *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "setup [summary-file]",
		Short: "Empty the summary file and start a new logging run",
		Long: `Empty the summary file (creating it if needed), open the log file and
record the start of a new run.

The summary file defaults to summary_file from the configuration. Its previous
content is discarded. The log file is appended to, never truncated; every
record of this run carries the same run_id, and so do the records later
appended by 'notelog info' and 'notelog error' on the same log file.`,
		Example: `  # Start a run for summary.txt
  notelog setup summary.txt

  # Log to a different file
  notelog setup --log-file logs/notes.log summary.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			summary := cfg.SummaryFile
			if len(args) == 1 {
				summary = args[0]
			}
			if summary == "" {
				return nlerrors.ValidationError("no summary file given", nil).
					WithSuggestion("Pass a path, set summary_file in .notelog.yaml, or set NOTELOG_SUMMARY_FILE")
			}

			facility := newFacility(cfg)
			if err := facility.Setup(summary); err != nil {
				return err
			}
			defer func() { _ = facility.Close() }()

			facility.Info("Logging initialized",
				slog.String("summary_file", summary),
				slog.String("version", version.Short()))

			if !quiet {
				out := output.New(cmd.OutOrStdout())
				out.Successf("Summary file emptied: %s", summary)
				out.Statusf("📝", "Logging to %s (run %s)", cfg.Logging.File, facility.RunID())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print nothing on success")

	return cmd
}
