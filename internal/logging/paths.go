package logging

import (
	"fmt"
	"os"
)

// DefaultLogFile is the log file name used when none is configured.
const DefaultLogFile = "logfile.log"

// DefaultLogPath returns the default log path: logfile.log in the working directory.
func DefaultLogPath() string {
	return DefaultLogFile
}

// LogSource selects which files of a rotated log set to read.
type LogSource string

const (
	// LogSourceCurrent is the active log file (default).
	LogSourceCurrent LogSource = "current"
	// LogSourceRotated is the rotated files only (logfile.log.1, .2, ...).
	LogSourceRotated LogSource = "rotated"
	// LogSourceAll is the active file plus every rotated file.
	LogSourceAll LogSource = "all"
)

// ParseLogSource parses a string into a LogSource.
func ParseLogSource(s string) LogSource {
	switch s {
	case "rotated":
		return LogSourceRotated
	case "all":
		return LogSourceAll
	default:
		return LogSourceCurrent
	}
}

// FindLogFile returns explicit if it exists, otherwise the default log path
// if that exists.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	if _, err := os.Stat(DefaultLogPath()); err == nil {
		return DefaultLogPath(), nil
	}

	return "", fmt.Errorf("no log file found. Run 'notelog setup <summary-file>' first.\nExpected at: %s", DefaultLogPath())
}

// FindLogFiles resolves the files of the log set rooted at path for source.
// Rotated files are returned oldest first so a merged read is chronological.
func FindLogFiles(path string, source LogSource) ([]string, error) {
	if path == "" {
		path = DefaultLogPath()
	}

	var paths []string

	switch source {
	case LogSourceCurrent, LogSourceRotated, LogSourceAll:
	default:
		return nil, fmt.Errorf("unknown log source: %s (use: current, rotated, all)", source)
	}

	if source != LogSourceCurrent {
		rotated, err := rotatedFiles(path)
		if err != nil {
			return nil, err
		}
		for i := len(rotated) - 1; i >= 0; i-- {
			paths = append(paths, rotated[i].path)
		}
	}

	if source != LogSourceRotated {
		if _, err := os.Stat(path); err == nil {
			paths = append(paths, path)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no log files found for source '%s' at %s", source, path)
	}

	return paths, nil
}
