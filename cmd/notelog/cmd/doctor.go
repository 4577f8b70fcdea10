package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notelog/internal/config"
	"github.com/Aman-CERP/notelog/internal/preflight"
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "doctor [summary-file]",
		Short: "Check that setup can run",
		Long: `Check, without touching any file, that 'notelog setup' would succeed:
the log and summary directories are writable, there is room for the log file
and its rotated copies, and no other process holds the setup lock.

Exits non-zero if a required check fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			target := preflight.Target{
				LogFile:      cfg.Logging.File,
				SummaryFile:  cfg.SummaryFile,
				MinFreeBytes: minFreeBytes(cfg),
			}
			if len(args) == 1 {
				target.SummaryFile = args[0]
			}

			checker := preflight.New(preflight.WithOutput(cmd.OutOrStdout()), preflight.WithVerbose(verbose))
			results := checker.RunAll(cmd.Context(), target)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{
					"status": checker.SummaryStatus(results),
					"checks": results,
				}); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			return checker.Err(results)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show details for each check")

	return cmd
}

// minFreeBytes is the space a full rotation set can occupy.
func minFreeBytes(cfg *config.Config) uint64 {
	if cfg.Logging.MaxSizeMB <= 0 {
		return preflight.MinDiskSpaceBytes
	}
	return uint64(cfg.Logging.MaxSizeMB) * uint64(cfg.Logging.MaxFiles+1) * 1024 * 1024
}
