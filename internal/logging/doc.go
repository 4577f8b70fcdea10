// Package logging owns process-wide logging for notelog tools.
//
// A Facility truncates the run's summary file, opens an append-only log file
// (logfile.log in the working directory unless configured otherwise) and
// installs the resulting slog logger. Records below info are dropped. The
// package-level Setup, Info and Error functions drive a default Facility that
// installs itself as the slog default; code that wants an explicit handle
// creates its own with NewFacility.
//
// The package also ships the reader side: Viewer tails, follows and
// summarizes log files written in either the text or the JSON format.
package logging
