// Package walker enumerates a root path under a byte budget and hands every
// qualifying file to the encoder.
//
// Directory entries are visited in lexical order, depth-first when the walk
// is recursive. Before each regular file and before listing any directory the
// running total is compared with the budget; once it meets or exceeds the
// budget nothing further is visited. Only qualifying files that were
// converted (or reported in a dry run) advance the total, by their original
// size. A regular-file root is processed alone and ignores the budget.
//
// Per-file problems are logged and recorded in the Result; only an invalid
// root surfaces as an error.
package walker
