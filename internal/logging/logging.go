package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log record formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file.
	FilePath string
	// Format is the record format: text or json.
	Format string
	// MaxSizeMB is the maximum size in MB before rotation. Zero disables rotation.
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep.
	MaxFiles int
	// WriteToStderr also copies every record to stderr.
	WriteToStderr bool
	// SyncWrites fsyncs the log file after every record.
	SyncWrites bool
	// Components maps component names to their own minimum level.
	// Names are dot-separated; "openai" also covers "openai.http".
	Components map[string]string
}

// DefaultConfig returns the configuration used by the package-level facility:
// info level, text records, file only.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		Format:        FormatText,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
		SyncWrites:    true,
	}
}

// NewLogger builds a file-backed logger from cfg and returns it together with
// a cleanup function that flushes and closes the file.
func NewLogger(cfg Config) (*slog.Logger, func(), error) {
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}
	writer.SetImmediateSync(cfg.SyncWrites)

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	logger := slog.New(newHandler(output, cfg))

	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// newHandler assembles the handler chain for cfg on top of w.
func newHandler(w io.Writer, cfg Config) slog.Handler {
	resolver := newLevelResolver(parseLevel(cfg.Level), cfg.Components)

	// The base handler accepts everything the most verbose component needs;
	// the component handler enforces the per-record floor.
	opts := &slog.HandlerOptions{Level: resolver.minLevel()}

	var base slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = NewTextHandler(w, opts)
	}

	return newComponentHandler(base, resolver)
}

// ValidFormat reports whether format names a supported record format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// ValidLevel reports whether level names a supported log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts string level to slog.Level (exported for use by log viewer).
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
