//go:build !unix

package preflight

// CheckDiskSpace is not implemented on this platform and always warns.
func (c *Checker) CheckDiskSpace(path string, _ uint64) CheckResult {
	return CheckResult{
		Name:    "disk_space",
		Status:  StatusWarn,
		Message: "free space not checked on this platform",
		Details: path,
	}
}
