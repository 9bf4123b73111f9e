// Package encoding produces the smaller sibling of a qualifying file.
//
// Videos are re-encoded by ffmpeg to HEVC (libx265) with AAC audio; JPEGs
// are re-encoded to AVIF through libvips. Outputs land next to the input,
// are never allowed to overwrite an existing file, and the input is never
// removed. ffmpeg diagnostics accumulate in conversion.log inside the log
// directory.
package encoding
