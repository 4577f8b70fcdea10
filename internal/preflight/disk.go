//go:build unix

package preflight

import (
	"fmt"
	"syscall"

	nlerrors "github.com/Aman-CERP/notelog/internal/errors"
)

// CheckDiskSpace checks that at least minFree bytes are available at path.
func (c *Checker) CheckDiskSpace(path string, minFree uint64) CheckResult {
	result := CheckResult{
		Name:     "disk_space",
		Required: true,
		Code:     nlerrors.ErrCodeDiskFull,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Code = nlerrors.ErrCodeInvalidPath
		result.Message = fmt.Sprintf("failed to check disk space: %v", err)
		return result
	}

	available := uint64(stat.Bavail) * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (minimum: %s)", formatBytes(available), formatBytes(minFree))

	if available < minFree {
		result.Status = StatusFail
		result.Details = "Free up space or lower logging.max_size_mb / logging.max_files"
		return result
	}

	result.Status = StatusPass
	return result
}
