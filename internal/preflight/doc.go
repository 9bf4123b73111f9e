// Package preflight checks, before any file is touched, that a run can
// proceed: the external tools resolve, the log directory is writable, and
// the root path can be read and written beside.
//
// The CLI "check" command renders every result; a real run stops at the
// first failure.
package preflight
