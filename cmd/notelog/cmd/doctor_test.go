package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/notelog/internal/config"
	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
	"github.com/Aman-CERP/notelog/internal/preflight"
)

func TestDoctorCmd_Ready(t *testing.T) {
	// Given: a writable working directory and a small rotation budget
	inTempDir(t)
	require.NoError(t, os.WriteFile(".notelog.yaml", []byte("logging:\n  max_size_mb: 1\n  max_files: 1\n"), 0o644))

	// When: running doctor for a summary file here
	out, err := run(t, "doctor", "summary.txt")

	// Then: every required check passes and nothing is created
	require.NoError(t, err)
	assert.Contains(t, out, "[PASS] log_directory")
	assert.Contains(t, out, "[PASS] summary_directory")
	_, err = os.Stat("summary.txt")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat("logfile.log")
	assert.True(t, os.IsNotExist(err))
}

func TestDoctorCmd_MissingSummaryDir(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile(".notelog.yaml", []byte("logging:\n  max_size_mb: 1\n  max_files: 1\n"), 0o644))

	out, err := run(t, "doctor", "--json", filepath.Join("missing", "summary.txt"))

	require.Error(t, err)
	assert.Equal(t, nlerrors.ErrCodeInvalidPath, nlerrors.GetCode(err))

	var report struct {
		Status string                  `json:"status"`
		Checks []preflight.CheckResult `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "failed", report.Status)
}

func TestMinFreeBytes(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxFiles = 5
	assert.Equal(t, uint64(60*1024*1024), minFreeBytes(cfg))

	cfg.Logging.MaxSizeMB = 0
	assert.Equal(t, uint64(preflight.MinDiskSpaceBytes), minFreeBytes(cfg))
}
