package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with Error
	err := New(ErrCodeLogOpen, "failed to open log file", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, err)
	assert.Equal(t, originalErr, errors.Unwrap(err))
	assert.True(t, errors.Is(err, originalErr))
}

func TestError_Unwrap_ExposesPathError(t *testing.T) {
	// Given: a filesystem error
	pathErr := &fs.PathError{Op: "open", Path: "/nope/logfile.log", Err: fs.ErrPermission}

	// When: wrapped as a setup failure
	err := New(ErrCodeLogOpen, "failed to open log file", pathErr)

	// Then: callers can still inspect the os-level cause
	var target *fs.PathError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "/nope/logfile.log", target.Path)
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		cause    error
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "io error with cause",
			code:     ErrCodeSummaryTruncate,
			message:  "failed to truncate summary file",
			cause:    errors.New("permission denied"),
			expected: "[ERR_201_SUMMARY_TRUNCATE] failed to truncate summary file: permission denied",
		},
		{
			name:     "validation error",
			code:     ErrCodeInvalidLevel,
			message:  "unknown level",
			expected: "[ERR_402_INVALID_LEVEL] unknown level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.cause)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeLogOpen, "log A", nil)
	err2 := New(ErrCodeLogOpen, "log B", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeLock, "lock", nil)))
}

func TestError_Is_ThroughFmtWrapping(t *testing.T) {
	// Given: an Error wrapped by fmt.Errorf
	inner := New(ErrCodeSummaryTruncate, "truncate", nil)
	outer := fmt.Errorf("setup: %w", inner)

	// Then: code helpers still see it
	assert.True(t, errors.Is(outer, New(ErrCodeSummaryTruncate, "", nil)))
	assert.Equal(t, ErrCodeSummaryTruncate, GetCode(outer))
	assert.Equal(t, CategoryIO, GetCategory(outer))
}

func TestError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeLogOpen, "failed to open log file", nil).
		WithDetail("path", "logfile.log").
		WithDetail("mode", "append")

	assert.Equal(t, "logfile.log", err.Details["path"])
	assert.Equal(t, "append", err.Details["mode"])
}

func TestError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeLock, "lock held", nil).WithSuggestion("Wait for the other process to finish setup")

	assert.Equal(t, "Wait for the other process to finish setup", err.Suggestion)
}

func TestError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeSummaryTruncate, CategoryIO},
		{ErrCodeLogOpen, CategoryIO},
		{ErrCodeLock, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInvalidLevel, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"bogus", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeSummaryTruncate, SeverityFatal},
		{ErrCodeLogOpen, SeverityFatal},
		{ErrCodeDiskFull, SeverityFatal},
		{ErrCodeLogRead, SeverityWarning},
		{ErrCodeConfigInvalid, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_CreatesErrorFromError(t *testing.T) {
	originalErr := errors.New("something went wrong")

	err := Wrap(ErrCodeInternal, originalErr)

	require.NotNil(t, err)
	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.Equal(t, "something went wrong", err.Message)
	assert.Equal(t, originalErr, err.Cause)
	assert.Equal(t, "[ERR_501_INTERNAL] something went wrong", err.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConstructors_SetCategory(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("bad yaml", nil).Category)
	assert.Equal(t, CategoryValidation, ValidationError("empty message", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("boom", nil).Category)
}

func TestIsFatal_ChecksFatalSeverity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"truncate failure", New(ErrCodeSummaryTruncate, "truncate", nil), true},
		{"wrapped fatal", fmt.Errorf("ctx: %w", New(ErrCodeLogOpen, "open", nil)), true},
		{"non-fatal", New(ErrCodeConfigInvalid, "bad", nil), false},
		{"standard error", errors.New("standard"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.err))
		})
	}
}

func TestGetCode_StandardError(t *testing.T) {
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCategory(errors.New("plain")))
}
