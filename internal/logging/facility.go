package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
)

// RunIDKey is the attribute key carrying the ID of the Setup that produced a record.
const RunIDKey = "run_id"

// Option configures a Facility.
type Option func(*Facility)

// WithInstallDefault makes Setup and Open install the new logger as the
// slog default.
func WithInstallDefault() Option {
	return func(f *Facility) {
		f.installDefault = true
	}
}

// WithSink replaces the log file with w. Setup still truncates the summary
// file; no log file is created.
func WithSink(w io.Writer) Option {
	return func(f *Facility) {
		f.sink = w
	}
}

// WithRunID fixes the run ID instead of minting one at Setup or reading the
// current run at Open.
func WithRunID(id string) Option {
	return func(f *Facility) {
		f.fixedRunID = id
	}
}

// WithFallback sets where records go before Setup or Open has run.
// The default is stderr.
func WithFallback(w io.Writer) Option {
	return func(f *Facility) {
		f.fallbackOut = w
	}
}

// Facility owns one logger handle: the sink it writes to and the minimum
// level. Setup replaces the handle; Info and Error write through whichever
// handle is current.
type Facility struct {
	mu             sync.RWMutex
	cfg            Config
	logger         *slog.Logger
	cleanup        func()
	runID          string
	installDefault bool
	sink           io.Writer
	fixedRunID     string

	fallbackOnce sync.Once
	fallbackOut  io.Writer
	fallback     *slog.Logger
}

// NewFacility creates a Facility that will log according to cfg once set up.
func NewFacility(cfg Config, opts ...Option) *Facility {
	f := &Facility{cfg: withDefaults(cfg), fallbackOut: os.Stderr}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Configure replaces the configuration used by the next Setup or Open.
// The active handle is left alone.
func (f *Facility) Configure(cfg Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = withDefaults(cfg)
}

// Config returns the configuration the next Setup or Open will use.
func (f *Facility) Config() Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg
}

// Setup truncates the summary file at summaryPath, opens the log sink and
// makes it the active handle with an info floor. A previous handle is closed.
// Calling Setup again truncates again and swaps in a fresh handle.
func (f *Facility) Setup(summaryPath string) error {
	return f.open(summaryPath, true)
}

// Open activates the log sink without touching any summary file, for
// processes that append to a log another process set up. Records join the
// run started by the last Setup on the same log file; without one, Open
// starts a new run.
func (f *Facility) Open() error {
	return f.open("", false)
}

func (f *Facility) open(summaryPath string, truncate bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg := f.cfg
	clampFloor(&cfg)

	if f.sink == nil {
		lock := newSetupLock(cfg.FilePath)
		if err := lock.Lock(); err != nil {
			return nlerrors.New(nlerrors.ErrCodeLock, "failed to lock log directory", err).
				WithDetail("path", lock.path)
		}
		defer func() { _ = lock.Unlock() }()
	}

	if truncate {
		if err := TruncateSummary(summaryPath); err != nil {
			return err
		}
	}

	logger, cleanup, err := f.build(cfg)
	if err != nil {
		return nlerrors.New(nlerrors.ErrCodeLogOpen, "failed to open log file", err).
			WithDetail("path", cfg.FilePath).
			WithSuggestion("Check that the log file location is writable or set logging.file")
	}

	runID := f.fixedRunID
	if runID == "" && !truncate && f.sink == nil {
		runID = readRunID(cfg.FilePath)
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	if truncate && f.sink == nil {
		if err := writeRunID(cfg.FilePath, runID); err != nil {
			cleanup()
			return nlerrors.New(nlerrors.ErrCodeLogOpen, "failed to record run ID", err).
				WithDetail("path", RunFilePath(cfg.FilePath))
		}
	}
	logger = logger.With(slog.String(RunIDKey, runID))

	previous := f.cleanup
	f.logger = logger
	f.cleanup = cleanup
	f.runID = runID

	if f.installDefault {
		slog.SetDefault(logger)
	}
	if previous != nil {
		previous()
	}

	return nil
}

func (f *Facility) build(cfg Config) (*slog.Logger, func(), error) {
	if f.sink != nil {
		return slog.New(newHandler(f.sink, cfg)), func() {}, nil
	}
	return NewLogger(cfg)
}

// Logger returns the active logger, or the stderr fallback before Setup.
// A logger obtained here keeps writing to its sink after a later Setup or
// Close has closed it; those records are lost. Info and Error do not have
// this problem.
func (f *Facility) Logger() *slog.Logger {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current()
}

// current returns the active logger or the fallback. f.mu must be held.
func (f *Facility) current() *slog.Logger {
	if f.logger != nil {
		return f.logger
	}
	return f.fallbackLogger(f.cfg)
}

// Component returns a logger tagged with the component name. Its level
// follows the configured component overrides. The returned logger stays bound
// to the handle that was active when Component was called.
func (f *Facility) Component(name string) *slog.Logger {
	return ForComponent(f.Logger(), name)
}

// Info appends msg at info severity.
// The write holds the read lock so Setup and Close cannot close the sink under it.
func (f *Facility) Info(msg string, args ...any) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	f.current().Info(msg, args...)
}

// Error appends msg at error severity.
func (f *Facility) Error(msg string, args ...any) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	f.current().Error(msg, args...)
}

// RunID returns the ID attached to records of the active handle, or "" before Setup.
func (f *Facility) RunID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.runID
}

// Active reports whether Setup or Open has installed a handle.
func (f *Facility) Active() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.logger != nil
}

// Close releases the active handle. Later calls log to the fallback sink,
// and so does the slog default when this facility installed it.
func (f *Facility) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cleanup := f.cleanup
	f.logger = nil
	f.cleanup = nil
	f.runID = ""

	if f.installDefault && cleanup != nil {
		slog.SetDefault(f.fallbackLogger(f.cfg))
	}
	if cleanup != nil {
		cleanup()
	}
	return nil
}

// fallbackLogger is where records go before Setup and after Close: a text
// handler at info level on the fallback writer, honouring the component
// levels of the config in use when it is first needed.
func (f *Facility) fallbackLogger(cfg Config) *slog.Logger {
	f.fallbackOnce.Do(func() {
		clampFloor(&cfg)
		resolver := newLevelResolver(slog.LevelInfo, cfg.Components)
		base := NewTextHandler(f.fallbackOut, &slog.HandlerOptions{Level: resolver.minLevel()})
		f.fallback = slog.New(newComponentHandler(base, resolver))
	})
	return f.fallback
}

// clampFloor raises every level in cfg to at least info.
func clampFloor(cfg *Config) {
	if parseLevel(cfg.Level) < slog.LevelInfo {
		cfg.Level = "info"
	}
	if len(cfg.Components) == 0 {
		return
	}
	components := make(map[string]string, len(cfg.Components))
	for name, level := range cfg.Components {
		if parseLevel(level) < slog.LevelInfo {
			level = "info"
		}
		components[name] = level
	}
	cfg.Components = components
}

func withDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = defaults.Level
	}
	if cfg.FilePath == "" {
		cfg.FilePath = defaults.FilePath
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	return cfg
}

var std = NewFacility(DefaultConfig(), WithInstallDefault())

// Default returns the process-wide facility used by the package-level functions.
func Default() *Facility {
	return std
}

// Setup truncates summaryPath and installs the process-wide logger writing to
// logfile.log (or the configured file) at info level.
func Setup(summaryPath string) error {
	return std.Setup(summaryPath)
}

// Info logs msg at info severity through the process-wide facility.
func Info(msg string, args ...any) {
	std.Info(msg, args...)
}

// Error logs msg at error severity through the process-wide facility.
func Error(msg string, args ...any) {
	std.Error(msg, args...)
}
