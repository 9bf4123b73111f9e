// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties, including disposition flags
//
// Inspect executes ffprobe and returns the parsed Result. Helper methods on
// Result answer the questions the classifier asks: whether a real video
// track exists (cover art excluded) and which codec it carries.
package ffprobe
