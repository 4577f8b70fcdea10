package logging

import (
	"os"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
)

// TruncateSummary empties the summary file at path, creating it if absent.
// Its previous content is gone once this returns.
func TruncateSummary(path string) error {
	if path == "" {
		return nlerrors.New(nlerrors.ErrCodeInvalidPath, "summary file path is empty", nil)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nlerrors.New(nlerrors.ErrCodeSummaryTruncate, "failed to truncate summary file", err).
			WithDetail("path", path).
			WithSuggestion("Check that the summary file's directory exists and is writable")
	}
	if err := f.Close(); err != nil {
		return nlerrors.New(nlerrors.ErrCodeSummaryTruncate, "failed to close summary file", err).
			WithDetail("path", path)
	}
	return nil
}
