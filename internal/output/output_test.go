package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a status message
	w.Status("📝", "Summary file ready")

	// Then: output contains icon and message
	assert.Equal(t, "📝 Summary file ready\n", buf.String())
}

func TestWriter_Status_NoIconIndents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Statusf("", "log file: %s", "logfile.log")

	assert.Equal(t, "   log file: logfile.log\n", buf.String())
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a success message
	w.Successf("Logging to %s", "logfile.log")

	// Then: output contains checkmark and uncolored message
	assert.Equal(t, "✅ Logging to logfile.log\n", buf.String())
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warningf("config exists at %s", "x.yaml")

	assert.Contains(t, buf.String(), "⚠️")
	assert.Contains(t, buf.String(), "config exists at x.yaml")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Errorf("failed: %d", 2)

	assert.Contains(t, buf.String(), "❌")
	assert.Contains(t, buf.String(), "failed: 2")
}

func TestWriter_Code_PrintsIndentedBlock(t *testing.T) {
	// Given: a writer with a buffer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: printing a multi-line block
	w.Code("version: 1\nlogging:\n  level: info\n")

	// Then: every line is indented and the block is padded with blank lines
	assert.Equal(t, "\n  version: 1\n  logging:\n    level: info\n\n", buf.String())
}

func TestWriter_Newline(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Newline()
	assert.Equal(t, "\n", buf.String())
}

func TestDetectColor(t *testing.T) {
	// Non-file writers never get color.
	assert.False(t, detectColor(&bytes.Buffer{}))

	// NO_COLOR wins even for a file.
	t.Setenv("NO_COLOR", "")
	assert.False(t, detectColor(os.Stdout))
}
