package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Files created next to the log file.
const (
	setupLockName = ".notelog.lock"
	runFileName   = ".notelog.run"
)

// setupLock serializes Setup across processes that share a log directory, so
// one process never truncates a summary file while another is mid-setup.
type setupLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// SetupLockPath returns the lock file guarding Setup for the log at logPath.
func SetupLockPath(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), setupLockName)
}

// RunFilePath returns the file holding the run ID of the last Setup on the
// log at logPath.
func RunFilePath(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), runFileName)
}

func writeRunID(logPath, runID string) error {
	return os.WriteFile(RunFilePath(logPath), []byte(runID+"\n"), 0o644)
}

// readRunID returns the current run ID for logPath, or "" if there is none.
func readRunID(logPath string) string {
	data, err := os.ReadFile(RunFilePath(logPath))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func newSetupLock(logPath string) *setupLock {
	lockPath := SetupLockPath(logPath)
	return &setupLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock blocks until the lock is held.
func (l *setupLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire setup lock %s: %w", l.path, err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *setupLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release setup lock: %w", err)
	}
	return nil
}
