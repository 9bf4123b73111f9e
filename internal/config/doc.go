// Package config loads, normalizes, and validates makeroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from --config, ~/.config/makeroom, or the
// working directory. The Config type centralizes the budget, encoder, tool,
// and logging knobs a run needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
