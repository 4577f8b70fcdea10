package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/logging"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status as its string form in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PASS":
		*s = StatusPass
	case "WARN":
		*s = StatusWarn
	case "FAIL":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
	// Code is the error code reported when a required check fails.
	Code string `json:"code,omitempty"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Target describes the files a run will touch.
type Target struct {
	LogFile     string
	SummaryFile string // Optional
	// MinFreeBytes is the free space needed beside the log file.
	// Zero uses MinDiskSpaceBytes.
	MinFreeBytes uint64
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks for target and returns the results.
func (c *Checker) RunAll(ctx context.Context, target Target) []CheckResult {
	logDir := dirOf(target.LogFile)

	results := []CheckResult{
		c.CheckWritePermissions("log_directory", logDir),
	}

	if target.SummaryFile == "" {
		results = append(results, CheckResult{
			Name:    "summary_directory",
			Status:  StatusWarn,
			Message: "no summary file configured",
			Details: "Pass one to 'notelog setup' or set summary_file",
		})
	} else {
		results = append(results, c.CheckWritePermissions("summary_directory", dirOf(target.SummaryFile)))
	}

	if ctx.Err() != nil {
		return results
	}

	minFree := target.MinFreeBytes
	if minFree == 0 {
		minFree = MinDiskSpaceBytes
	}
	results = append(results, c.CheckDiskSpace(logDir, minFree))
	results = append(results, c.CheckLock(logging.SetupLockPath(target.LogFile)))

	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// Err returns the first critical failure as a structured error, or nil.
func (c *Checker) Err(results []CheckResult) error {
	for _, r := range results {
		if !r.IsCritical() {
			continue
		}
		code := r.Code
		if code == "" {
			code = nlerrors.ErrCodeInternal
		}
		err := nlerrors.New(code, fmt.Sprintf("preflight check %s failed: %s", r.Name, r.Message), nil).
			WithDetail("check", r.Name)
		if r.Details != "" {
			err = err.WithSuggestion(r.Details)
		}
		return err
	}
	return nil
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "notelog preflight")
	_, _ = fmt.Fprintln(c.output, "=================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errors))
		for _, e := range errors {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

// CheckWritePermissions checks that a file can be created in dir.
// A missing dir fails; the log sink creates its own directory but the
// summary file does not.
func (c *Checker) CheckWritePermissions(name, dir string) CheckResult {
	result := CheckResult{
		Name:     name,
		Required: true,
		Code:     nlerrors.ErrCodeInvalidPath,
	}

	f, err := os.CreateTemp(dir, ".notelog-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not writable: %v", dir, err)
		result.Details = "Create the directory or choose a writable location"
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = dir
	return result
}

// CheckLock reports whether another process holds the setup lock at path.
// A held lock only delays setup, so the check is never required.
func (c *Checker) CheckLock(path string) CheckResult {
	result := CheckResult{
		Name: "setup_lock",
		Code: nlerrors.ErrCodeLock,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		result.Status = StatusPass
		result.Message = "not held"
		return result
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot inspect lock: %v", err)
		return result
	}
	if !locked {
		result.Status = StatusWarn
		result.Message = "held by another process"
		result.Details = fmt.Sprintf("Setup waits until %s is released", path)
		return result
	}
	_ = lock.Unlock()

	result.Status = StatusPass
	result.Message = "not held"
	return result
}

func dirOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}
