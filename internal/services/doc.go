// Package services defines shared helpers consumed by the classifier, the
// re-encoder and the tree walker.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier and the candidate path for
//     logging.
//   - Structured error markers plus the Wrap helper that separate per-file
//     failures (logged, walk continues) from setup failures (run aborts).
package services
