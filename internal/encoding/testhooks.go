package encoding

import (
	"context"

	"makeroom/internal/avif"
)

// imageExport is the AVIF writer. It is a package-level variable so tests can
// avoid libvips.
var imageExport = avif.Convert

// SetImageExportForTests overrides the AVIF writer during tests.
func SetImageExportForTests(fn func(context.Context, string, string, int) (int64, error)) func() {
	previous := imageExport
	imageExport = fn
	return func() {
		imageExport = previous
	}
}
