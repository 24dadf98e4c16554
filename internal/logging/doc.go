// Package logging assembles structured slog loggers and formatting helpers used
// across photolink.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run identifier. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Log lines go to stderr and the log file; stdout is reserved for command
// output so "--json" stays machine-readable.
package logging
