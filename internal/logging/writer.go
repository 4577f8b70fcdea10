package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter is the append-only file sink behind a Facility.
// It is safe for concurrent use; every Write holds the writer's lock.
type RotatingWriter struct {
	path     string
	maxSize  int64 // zero disables rotation
	maxFiles int

	mu            sync.Mutex
	file          *os.File
	written       int64
	immediateSync bool
}

// NewRotatingWriter opens path for appending, creating it and its directory
// if needed. maxSizeMB <= 0 disables rotation.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if maxFiles < 1 {
		maxFiles = 1
	}
	w := &RotatingWriter{
		path:          path,
		maxFiles:      maxFiles,
		immediateSync: true,
	}
	if maxSizeMB > 0 {
		w.maxSize = int64(maxSizeMB) * 1024 * 1024
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if err := w.openFile(); err != nil {
		return nil, err
	}

	return w, nil
}

// Path returns the path of the active log file.
func (w *RotatingWriter) Path() string {
	return w.path
}

// SetImmediateSync enables or disables fsync after each write.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immediateSync = enabled
}

// Write appends p, rotating first if p would push the file past its limit.
func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	if w.maxSize > 0 && w.written > 0 && w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			// Keep logging into whatever file is open.
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
			if w.file == nil {
				return 0, err
			}
		}
	}

	n, err = w.file.Write(p)
	w.written += int64(n)

	if w.immediateSync && err == nil {
		_ = w.file.Sync()
	}

	return n, err
}

// Close closes the underlying file. Later writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

func (w *RotatingWriter) openFile() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = f
	w.written = info.Size()
	return nil
}

// rotate shifts logfile.log -> logfile.log.1 -> logfile.log.2 ... and drops
// anything numbered maxFiles or higher.
func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	rotated, err := rotatedFiles(w.path)
	if err != nil {
		return err
	}

	// Highest number first so renames never overwrite.
	for i := len(rotated) - 1; i >= 0; i-- {
		f := rotated[i]
		if f.num >= w.maxFiles {
			_ = os.Remove(f.path)
			continue
		}
		_ = os.Rename(f.path, fmt.Sprintf("%s.%d", w.path, f.num+1))
	}

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			_ = w.openFile()
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	w.written = 0
	return w.openFile()
}

type rotatedFile struct {
	path string
	num  int
}

// rotatedFiles lists path.N siblings sorted by N ascending (newest first).
func rotatedFiles(path string) ([]rotatedFile, error) {
	base := filepath.Base(path)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), base+".*"))
	if err != nil {
		return nil, fmt.Errorf("failed to find rotated files: %w", err)
	}

	var files []rotatedFile
	for _, m := range matches {
		suffix := strings.TrimPrefix(filepath.Base(m), base+".")
		num, err := strconv.Atoi(suffix)
		if err != nil || num < 1 {
			continue
		}
		files = append(files, rotatedFile{path: m, num: num})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].num < files[j].num
	})
	return files, nil
}
