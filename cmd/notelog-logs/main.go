// Package main provides the notelog-logs command - a viewer for notelog log files.
//
// Usage:
//
//	notelog-logs [flags]
//
// Flags:
//
//	-f, --follow         Follow log output (like tail -f)
//	-n, --lines int      Number of lines to show (default 50)
//	    --level string   Filter by level (debug|info|warn|error)
//	    --filter string  Filter by pattern (regex)
//	    --run string     Only records from this run (run_id prefix)
//	    --no-color       Disable colored output
//	    --file strings   Log file path, repeatable (default: logging.file)
//	    --source string  Log source: current, rotated, or all (default: current)
//	    --stats          Print per-level and per-run counts instead of records
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/notelog/internal/config"
	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/logging"
	"github.com/Aman-CERP/notelog/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprint(os.Stderr, nlerrors.FormatForCLI(err))
		os.Exit(1)
	}
}

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	runID   string
	noColor bool
	files   []string
	source  string
	stats   bool
}

func newRootCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "notelog-logs",
		Short: "View notelog log files",
		Long: `View and tail the log file written by 'notelog setup' and the tools that
share it.

By default, shows the last 50 records of the configured log file
(logging.file, logfile.log unless configured). Use -f to follow new records
in real-time (like 'tail -f').

Log Sources:
  current  - The active log file
  rotated  - Rotated files only (logfile.log.1, logfile.log.2, ...)
  all      - Rotated files and the active file, merged by timestamp

Examples:
  notelog-logs                       # Show last 50 records
  notelog-logs -n 200 --source all   # Include rotated files
  notelog-logs -f                    # Follow in real-time
  notelog-logs --level error         # Show only errors
  notelog-logs --run 3f2a            # Show one run
  notelog-logs --filter "page \d+"   # Filter by pattern
  notelog-logs --file a.log --file b.log -f   # Follow two logs
  notelog-logs --stats               # Counts per level and per run`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("no-color") {
				opts.noColor = !logging.ColorEnabled(os.Stdout)
			}
			return runLogs(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by log level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by keyword/pattern (regex)")
	cmd.Flags().StringVar(&opts.runID, "run", "", "Only records from this run (run_id prefix)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringSliceVar(&opts.files, "file", nil, "Path to log file, repeatable (default: logging.file from config)")
	cmd.Flags().StringVar(&opts.source, "source", string(logging.LogSourceCurrent), "Log source: current, rotated, or all")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print counts per level and per run")

	return cmd
}

func runLogs(ctx context.Context, opts logsOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return nlerrors.New(nlerrors.ErrCodeInvalidLevel, fmt.Sprintf("invalid level %q", opts.level), nil).
			WithSuggestion("Use one of: debug, info, warn, error")
	}
	if opts.lines < 1 {
		return nlerrors.ValidationError(fmt.Sprintf("--lines must be at least 1, got %d", opts.lines), nil)
	}

	source := logging.LogSource(opts.source)
	switch source {
	case logging.LogSourceCurrent, logging.LogSourceRotated, logging.LogSourceAll:
	default:
		return nlerrors.New(nlerrors.ErrCodeInvalidInput, fmt.Sprintf("unknown log source %q", opts.source), nil).
			WithSuggestion("Use one of: current, rotated, all")
	}

	bases, err := logFiles(opts.files)
	if err != nil {
		return err
	}

	var paths []string
	for _, base := range bases {
		found, err := logging.FindLogFiles(base, source)
		if err != nil {
			return nlerrors.New(nlerrors.ErrCodeLogRead, "no log files found", err).
				WithDetail("path", base).
				WithSuggestion("Run 'notelog setup <summary-file>' first, or pass --file")
		}
		paths = append(paths, found...)
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return nlerrors.New(nlerrors.ErrCodeInvalidInput, "invalid filter pattern", err).
				WithDetail("pattern", opts.filter)
		}
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:      opts.level,
		Pattern:    pattern,
		RunID:      opts.runID,
		NoColor:    opts.noColor,
		ShowSource: len(paths) > 1,
	}, stdout)

	if opts.stats {
		stats, err := viewer.Stats(paths)
		if err != nil {
			return nlerrors.New(nlerrors.ErrCodeLogRead, "failed to read log files", err)
		}
		_, err = fmt.Fprintln(stdout, renderStats(stats))
		return err
	}

	// Show log file paths
	if len(paths) == 1 {
		_, _ = fmt.Fprintf(stderr, "Log file: %s\n", paths[0])
	} else {
		_, _ = fmt.Fprintf(stderr, "Log files: %s\n", strings.Join(paths, ", "))
	}
	if opts.follow {
		_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")
	}
	_, _ = fmt.Fprintln(stderr, "---")

	var entries []logging.LogEntry
	if len(paths) == 1 {
		entries, err = viewer.Tail(paths[0], opts.lines)
	} else {
		entries, err = viewer.TailMultiple(paths, opts.lines)
	}
	if err != nil {
		return nlerrors.New(nlerrors.ErrCodeLogRead, "failed to read log file", err)
	}
	viewer.Print(entries)

	if !opts.follow {
		return nil
	}

	// Rotated files never grow; only the active files are followed.
	return runFollow(ctx, viewer, bases, stdout, stderr)
}

// logFiles returns the explicit log files, or the configured one.
func logFiles(explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nlerrors.InternalError("failed to get current directory", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}
	return []string{cfg.Logging.File}, nil
}

func runFollow(ctx context.Context, viewer *logging.Viewer, paths []string, stdout, stderr io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		if len(paths) == 1 {
			errCh <- viewer.Follow(ctx, paths[0], entries)
			return
		}
		errCh <- viewer.FollowMultiple(ctx, paths, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(stdout, viewer.FormatEntry(entry))
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return nlerrors.New(nlerrors.ErrCodeLogRead, "failed to follow log file", err)
			}
			return nil
		case <-ctx.Done():
			_, _ = fmt.Fprintln(stderr, "\n---")
			_, _ = fmt.Fprintln(stderr, "Stopped.")
			return nil
		}
	}
}

// renderStats renders per-level counts followed by one row per run.
func renderStats(stats *logging.Stats) string {
	var sb strings.Builder

	levels := table.NewWriter()
	levels.SetStyle(table.StyleRounded)
	levels.SetTitle("Records in " + strings.Join(stats.Files, ", "))
	levels.AppendHeader(table.Row{"Level", "Records"})
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		levels.AppendRow(table.Row{level, stats.ByLevel[level]})
	}
	levels.AppendFooter(table.Row{"Total", stats.Total})
	if stats.Invalid > 0 {
		levels.AppendFooter(table.Row{"Unparsed", stats.Invalid})
	}
	levels.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	sb.WriteString(levels.Render())

	if len(stats.Runs) == 0 {
		return sb.String()
	}

	runs := table.NewWriter()
	runs.SetStyle(table.StyleRounded)
	runs.AppendHeader(table.Row{"Run", "First", "Last", "Records", "Errors"})
	for _, r := range stats.Runs {
		runs.AppendRow(table.Row{
			shortRunID(r.RunID),
			r.First.Format("2006-01-02 15:04:05"),
			r.Last.Format("15:04:05"),
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Errors),
		})
	}
	runs.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	sb.WriteByte('\n')
	sb.WriteString(runs.Render())

	return sb.String()
}

func shortRunID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
