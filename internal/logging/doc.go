// Package logging assembles the structured slog loggers used by make-room.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing (stdout plus the persistent makeroom.log in the log directory), and
// exposes context-aware helpers so walker and encoder code automatically tag
// log lines with the run identifier and the candidate path. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
