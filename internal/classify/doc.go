// Package classify decides whether a file is worth re-encoding.
//
// Kind sniffs content (never the extension) to separate JPEG images, videos,
// and everything else; videos are confirmed by asking ffprobe for a real
// video track. Efficiency reads the encoder settings mediainfo reports for
// the first video track and compares the embedded crf against the configured
// threshold. Classify combines both into a single qualifying decision.
//
// Every operation is read-only, so repeated calls on an unchanged file return
// the same answer.
package classify
