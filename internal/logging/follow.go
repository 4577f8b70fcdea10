package logging

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// followPollInterval is how often a followed file is re-read when no
// filesystem event arrives (and the only trigger when fsnotify is unavailable).
const followPollInterval = 500 * time.Millisecond

// Follow streams entries appended to path to out until ctx is cancelled.
// It starts at the current end of the file. Rotation (the file replaced by a
// new one) and truncation restart reading from the beginning of the new file.
func (v *Viewer) Follow(ctx context.Context, path string, out chan<- LogEntry) error {
	t, err := newTailer(path)
	if err != nil {
		return err
	}
	defer t.close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("fsnotify unavailable, polling log file", slog.String("path", path), slog.String("error", err.Error()))
		watcher = nil
	} else {
		defer func() { _ = watcher.Close() }()
		// Watch the directory: rotation renames the file away.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			slog.Debug("failed to watch log directory, polling", slog.String("path", path), slog.String("error", err.Error()))
			_ = watcher.Close()
			watcher = nil
		}
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	source := filepath.Base(path)
	emit := func(lines []string) error {
		for _, line := range lines {
			entry := v.parseLineWithSource(line, source)
			if !v.matchesFilter(entry) {
				continue
			}
			select {
			case out <- entry:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if err := v.drain(t, emit); err != nil {
				return err
			}
			if event.Has(fsnotify.Create) && t.reopen() == nil {
				if err := v.drain(t, emit); err != nil {
					return err
				}
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Debug("log watcher error", slog.String("path", path), slog.String("error", err.Error()))

		case <-ticker.C:
			if err := v.drain(t, emit); err != nil {
				return err
			}
			if t.replaced() && t.reopen() == nil {
				if err := v.drain(t, emit); err != nil {
					return err
				}
			}
		}
	}
}

// FollowMultiple follows every path concurrently, sending entries to out.
// It returns when ctx is cancelled or any follower fails.
func (v *Viewer) FollowMultiple(ctx context.Context, paths []string, out chan<- LogEntry) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			return v.Follow(ctx, path, out)
		})
	}
	return g.Wait()
}

func (v *Viewer) drain(t *tailer, emit func([]string) error) error {
	lines, err := t.readLines()
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	return emit(lines)
}

// tailer reads complete lines appended to a file, holding back a trailing
// partial line until its newline arrives.
type tailer struct {
	path    string
	file    *os.File
	info    os.FileInfo
	offset  int64
	reader  *bufio.Reader
	pending []byte
}

func newTailer(path string) (*tailer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to seek log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	return &tailer{
		path:   path,
		file:   file,
		info:   info,
		offset: offset,
		reader: bufio.NewReader(file),
	}, nil
}

// replaced reports whether path now names a different file than the one open.
func (t *tailer) replaced() bool {
	info, err := os.Stat(t.path)
	if err != nil {
		return false
	}
	return !os.SameFile(info, t.info)
}

// reopen switches to the file currently at path, reading it from the start.
func (t *tailer) reopen() error {
	file, err := os.Open(t.path)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	if os.SameFile(info, t.info) {
		_ = file.Close()
		return nil
	}

	_ = t.file.Close()
	t.file = file
	t.info = info
	t.offset = 0
	t.reader = bufio.NewReader(file)
	t.pending = nil
	return nil
}

func (t *tailer) readLines() ([]string, error) {
	if info, err := t.file.Stat(); err == nil && info.Size() < t.offset {
		// Truncated in place.
		if _, err := t.file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		t.offset = 0
		t.reader.Reset(t.file)
		t.pending = nil
	}

	var lines []string
	for {
		chunk, err := t.reader.ReadBytes('\n')
		t.offset += int64(len(chunk))
		if len(chunk) > 0 {
			t.pending = append(t.pending, chunk...)
			if chunk[len(chunk)-1] == '\n' {
				line := string(t.pending[:len(t.pending)-1])
				t.pending = t.pending[:0]
				if line != "" {
					lines = append(lines, line)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
	}
}

func (t *tailer) close() {
	if t.file != nil {
		_ = t.file.Close()
	}
}
