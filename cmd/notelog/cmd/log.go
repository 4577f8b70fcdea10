package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
)

// newLogCmd creates the info or error command, which append one record to
// the log file without touching the summary file.
func newLogCmd(opts *rootOptions, level string) *cobra.Command {
	var component string

	cmd := &cobra.Command{
		Use:   level + " <message...>",
		Short: fmt.Sprintf("Append a %s record to the log file", strings.ToUpper(level)),
		Example: fmt.Sprintf(`  notelog %s "Processed 12 pages"
  notelog %s --component ocr "page 3 unreadable"`, level, level),
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			if strings.TrimSpace(msg) == "" {
				return nlerrors.New(nlerrors.ErrCodeInvalidInput, "message is empty", nil)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			facility := newFacility(cfg)
			if err := facility.Open(); err != nil {
				return err
			}
			defer func() { _ = facility.Close() }()

			logger := facility.Logger()
			if component != "" {
				logger = facility.Component(component)
			}

			if level == "error" {
				logger.Error(msg)
			} else {
				logger.Info(msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&component, "component", "c", "", "Component name attached to the record")

	return cmd
}
