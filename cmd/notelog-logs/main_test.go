package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// writeRun starts a run on logPath and writes the given records through it.
func writeRun(t *testing.T, logPath string, write func(f *logging.Facility)) string {
	t.Helper()
	cfg := logging.DefaultConfig()
	cfg.FilePath = logPath
	cfg.SyncWrites = false

	f := logging.NewFacility(cfg)
	require.NoError(t, f.Setup(filepath.Join(filepath.Dir(logPath), "summary.txt")))
	write(f)
	id := f.RunID()
	require.NoError(t, f.Close())
	return id
}

func defaultOpts(files ...string) logsOptions {
	return logsOptions{lines: 50, noColor: true, files: files, source: "current"}
}

func TestRunLogs_Tail(t *testing.T) {
	// Given: a log with three records
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	writeRun(t, logPath, func(f *logging.Facility) {
		f.Info("first")
		f.Error("second", "page", 3)
		f.Info("third")
	})

	// When: showing the last two lines
	opts := defaultOpts(logPath)
	opts.lines = 2
	var stdout, stderr bytes.Buffer
	err := runLogs(context.Background(), opts, &stdout, &stderr)

	// Then: only the last two records are printed
	require.NoError(t, err)
	out := stdout.String()
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "ERROR second page=3")
	assert.Contains(t, out, "INFO  third")
	assert.Contains(t, stderr.String(), "Log file: "+logPath)
}

func TestRunLogs_LevelAndFilter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	writeRun(t, logPath, func(f *logging.Facility) {
		f.Info("page 1 done")
		f.Error("page 2 failed")
		f.Error("upload failed")
	})

	opts := defaultOpts(logPath)
	opts.level = "error"
	opts.filter = `page \d+`
	var stdout bytes.Buffer
	require.NoError(t, runLogs(context.Background(), opts, &stdout, &bytes.Buffer{}))

	assert.Equal(t, 1, strings.Count(stdout.String(), "\n"))
	assert.Contains(t, stdout.String(), "page 2 failed")
}

func TestRunLogs_RunFilter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	writeRun(t, logPath, func(f *logging.Facility) { f.Info("old run") })
	second := writeRun(t, logPath, func(f *logging.Facility) { f.Info("new run") })

	require.Len(t, second, 36)
	opts := defaultOpts(logPath)
	opts.runID = second[:8]
	var stdout bytes.Buffer
	require.NoError(t, runLogs(context.Background(), opts, &stdout, &bytes.Buffer{}))

	assert.NotContains(t, stdout.String(), "old run")
	assert.Contains(t, stdout.String(), "new run")
}

func TestRunLogs_MultipleFilesShowSource(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	writeRun(t, a, func(f *logging.Facility) { f.Info("from a") })
	writeRun(t, b, func(f *logging.Facility) { f.Info("from b") })

	var stdout, stderr bytes.Buffer
	require.NoError(t, runLogs(context.Background(), defaultOpts(a, b), &stdout, &stderr))

	assert.Contains(t, stdout.String(), "[a.log] from a")
	assert.Contains(t, stdout.String(), "[b.log] from b")
	assert.Contains(t, stderr.String(), "Log files: ")
}

func TestRunLogs_SourceAll(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logfile.log")
	require.NoError(t, os.WriteFile(logPath+".1", []byte("2026-01-02 10:00:00,000 - INFO - rotated away\n"), 0o644))
	require.NoError(t, os.WriteFile(logPath, []byte("2026-01-02 11:00:00,000 - INFO - current\n"), 0o644))

	opts := defaultOpts(logPath)
	opts.source = "all"
	var stdout bytes.Buffer
	require.NoError(t, runLogs(context.Background(), opts, &stdout, &bytes.Buffer{}))

	out := stdout.String()
	assert.Less(t, strings.Index(out, "rotated away"), strings.Index(out, "current"))
	assert.Contains(t, out, "[logfile.log.1]")
}

func TestRunLogs_Stats(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	runID := writeRun(t, logPath, func(f *logging.Facility) {
		f.Info("one")
		f.Info("two")
		f.Error("three")
	})

	opts := defaultOpts(logPath)
	opts.stats = true
	var stdout bytes.Buffer
	require.NoError(t, runLogs(context.Background(), opts, &stdout, &bytes.Buffer{}))

	out := stdout.String()
	assert.Contains(t, out, "Records in logfile.log")
	assert.Contains(t, out, runID[:8])
	assert.Regexp(t, `INFO\s+│\s+2`, out)
	assert.Regexp(t, `ERROR\s+│\s+1`, out)
}

func TestRunLogs_DefaultFileFromConfig(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NOTELOG_LOG_FILE", "")
	require.NoError(t, os.WriteFile(".notelog.yaml", []byte("logging:\n  file: notes.log\n"), 0o644))
	writeRun(t, filepath.Join(dir, "notes.log"), func(f *logging.Facility) { f.Info("configured") })

	var stdout bytes.Buffer
	require.NoError(t, runLogs(context.Background(), defaultOpts(), &stdout, &bytes.Buffer{}))

	assert.Contains(t, stdout.String(), "configured")
}

func TestRunLogs_Errors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	writeRun(t, logPath, func(f *logging.Facility) { f.Info("x") })

	tests := []struct {
		name   string
		modify func(*logsOptions)
		code   string
	}{
		{"bad level", func(o *logsOptions) { o.level = "loud" }, nlerrors.ErrCodeInvalidLevel},
		{"bad lines", func(o *logsOptions) { o.lines = 0 }, nlerrors.ErrCodeInvalidInput},
		{"bad source", func(o *logsOptions) { o.source = "mlx" }, nlerrors.ErrCodeInvalidInput},
		{"bad filter", func(o *logsOptions) { o.filter = "(" }, nlerrors.ErrCodeInvalidInput},
		{"missing file", func(o *logsOptions) { o.files = []string{logPath + ".missing"} }, nlerrors.ErrCodeLogRead},
		{"no rotated files", func(o *logsOptions) { o.source = "rotated" }, nlerrors.ErrCodeLogRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOpts(logPath)
			tt.modify(&opts)
			err := runLogs(context.Background(), opts, &bytes.Buffer{}, &bytes.Buffer{})
			require.Error(t, err)
			assert.Equal(t, tt.code, nlerrors.GetCode(err))
		})
	}
}

func TestRunLogs_Follow(t *testing.T) {
	// Given: a log being followed
	logPath := filepath.Join(t.TempDir(), "logfile.log")
	writeRun(t, logPath, func(f *logging.Facility) { f.Info("before follow") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := defaultOpts(logPath)
	opts.follow = true
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runLogs(ctx, opts, stdout, stderr) }()

	// When: records are appended
	i := 0
	assert.Eventually(t, func() bool {
		i++
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return false
		}
		_, _ = fmt.Fprintf(f, "2026-01-02 10:00:00,000 - INFO - appended %d\n", i)
		_ = f.Close()
		return strings.Contains(stdout.String(), "appended")
	}, 5*time.Second, 100*time.Millisecond)

	// Then: the existing tail and new records are printed until cancelled
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop after cancel")
	}
	assert.Contains(t, stdout.String(), "before follow")
	assert.Contains(t, stderr.String(), "Following...")
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"follow", "lines", "level", "filter", "run", "no-color", "file", "source", "stats"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "50", cmd.Flags().Lookup("lines").DefValue)
	assert.Equal(t, "current", cmd.Flags().Lookup("source").DefValue)
}

func TestShortRunID(t *testing.T) {
	assert.Equal(t, "-", shortRunID(""))
	assert.Equal(t, "abc", shortRunID("abc"))
	assert.Equal(t, "01234567", shortRunID("0123456789"))
}
