// Package preflight checks that a notelog run can start before it truncates
// anything.
//
// The package validates:
//   - Write permissions in the log and summary directories
//   - Free disk space for the log file and its rotated copies
//   - That no other process holds the setup lock
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, preflight.Target{LogFile: "logfile.log"})
//	if err := checker.Err(results); err != nil {
//	    // Handle failures
//	}
package preflight
