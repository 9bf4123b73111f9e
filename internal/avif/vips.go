package avif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"makeroom/internal/logging"
)

var (
	vipsMu      sync.Mutex
	vipsStarted bool
)

// ErrNotStarted is returned by Convert when Startup has not run.
var ErrNotStarted = errors.New("libvips not started")

// Startup initializes libvips with a single worker thread and routes its log
// messages through logger.
func Startup(logger *slog.Logger) {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	if vipsStarted {
		return
	}

	logger = logging.NewComponentLogger(logger, "vips")
	verbosity := vips.LogLevelWarning
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		verbosity = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		attrs := logging.Args(logging.String("domain", domain))
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logger.Error(msg, attrs...)
		case vips.LogLevelWarning:
			logger.Warn(msg, attrs...)
		default:
			logger.Debug(msg, attrs...)
		}
	}, verbosity)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})
	vipsStarted = true
	logger.Debug("libvips started", logging.String("version", vips.Version))
}

// Shutdown releases libvips. It is safe to call when Startup never ran.
func Shutdown() {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	if !vipsStarted {
		return
	}
	vips.Shutdown()
	vipsStarted = false
}

// Started reports whether libvips is ready for Convert.
func Started() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsStarted
}

// Version returns the linked libvips version string.
func Version() string {
	return vips.Version
}

// Convert decodes the JPEG at src, tolerating truncated data, and writes an
// AVIF at the given quality to dst. dst must not exist. It returns the number
// of bytes written.
func Convert(ctx context.Context, src, dst string, quality int) (int64, error) {
	if !Started() {
		return 0, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	params := vips.NewImportParams()
	params.FailOnError.Set(false)
	ref, err := vips.LoadImageFromFile(src, params)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", src, err)
	}
	defer ref.Close()

	export := vips.NewAvifExportParams()
	export.Quality = quality
	payload, _, err := ref.ExportAvif(export)
	if err != nil {
		return 0, fmt.Errorf("export avif: %w", err)
	}

	file, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}
	written, err := file.Write(payload)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return int64(written), fmt.Errorf("write %s: %w", dst, err)
	}
	return int64(written), nil
}
