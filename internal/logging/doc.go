// Package logging assembles the structured slog loggers used by eventsort.
//
// A run logs human-readable lines to the terminal and, when a log directory is
// configured, JSON lines to a per-run file. Every record written through a run
// logger carries the run identifier, and context helpers add the current stage
// and epoch. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
