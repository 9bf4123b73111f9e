package classify

import (
	"context"

	"github.com/gabriel-vasile/mimetype"

	"makeroom/internal/media/ffprobe"
	"makeroom/internal/media/mediainfo"
)

// Package-level seams so tests can replace the external inspectors.
var (
	sniffFile      = mimetype.DetectFile
	probeInspect   = ffprobe.Inspect
	mediaInspector = mediainfo.Inspect
)

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeInspect
	probeInspect = fn
	return func() {
		probeInspect = previous
	}
}

// SetMediaInfoForTests overrides the mediainfo runner during tests.
func SetMediaInfoForTests(fn func(context.Context, string, string) (mediainfo.Result, error)) func() {
	previous := mediaInspector
	mediaInspector = fn
	return func() {
		mediaInspector = previous
	}
}
