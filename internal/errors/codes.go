// Package errors provides structured error handling for notelog.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (summary file, log file, lock)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigWrite    = "ERR_103_CONFIG_WRITE"

	// IO errors (200-299)
	ErrCodeSummaryTruncate = "ERR_201_SUMMARY_TRUNCATE"
	ErrCodeLogOpen         = "ERR_202_LOG_OPEN"
	ErrCodeLock            = "ERR_203_LOCK"
	ErrCodeLogRead         = "ERR_204_LOG_READ"
	ErrCodeDiskFull        = "ERR_205_DISK_FULL"

	// Validation errors (400-499)
	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidLevel  = "ERR_402_INVALID_LEVEL"
	ErrCodeInvalidFormat = "ERR_403_INVALID_FORMAT"
	ErrCodeInvalidPath   = "ERR_404_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Anything that prevents the sink from opening aborts setup.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeSummaryTruncate, ErrCodeLogOpen, ErrCodeDiskFull:
		return SeverityFatal
	case ErrCodeLogRead:
		return SeverityWarning
	default:
		return SeverityError
	}
}
