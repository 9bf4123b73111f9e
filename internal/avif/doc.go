// Package avif owns the libvips lifecycle and the JPEG to AVIF export.
//
// Startup must run once before Convert; Shutdown releases libvips at exit.
// libvips log output is bridged into the supplied slog logger at a verbosity
// matching the logger's level.
package avif
