// Package main hosts the makeroom CLI entrypoint and command graph.
//
// The root command runs one budgeted reclaim pass over a path. The check and
// config subcommands cover tool discovery and configuration scaffolding. This
// package only resolves configuration, applies flag overrides, and wires the
// internal packages together; the work itself lives under internal/.
package main
