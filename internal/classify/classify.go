package classify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"makeroom/internal/config"
	"makeroom/internal/logging"
	"makeroom/internal/services"
)

var crfPattern = regexp.MustCompile(`crf=(\d+)`)

// Classifier answers media-kind and efficiency questions for candidate files.
type Classifier struct {
	ffprobeBinary   string
	mediainfoBinary string
	threshold       int
	logger          *slog.Logger
}

// New builds a classifier from the tool paths and crf threshold in cfg.
func New(cfg *config.Config, logger *slog.Logger) *Classifier {
	return &Classifier{
		ffprobeBinary:   cfg.Tools.FFprobe,
		mediainfoBinary: cfg.Tools.MediaInfo,
		threshold:       cfg.Video.CRF,
		logger:          logging.NewComponentLogger(logger, "classify"),
	}
}

// Threshold returns the crf at or below which a video counts as efficient.
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Kind sniffs the file content and, for anything that might carry video,
// confirms a real video track with ffprobe.
func (c *Classifier) Kind(ctx context.Context, path string) (Kind, error) {
	kind, _, err := c.kind(ctx, path)
	return kind, err
}

func (c *Classifier) kind(ctx context.Context, path string) (Kind, string, error) {
	mime, err := sniffFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return KindUnknown, "", err
		}
		return KindUnknown, "", services.Wrap(services.ErrTransient, "classify", "sniff", "detect content type", err)
	}
	mimeType := mime.String()

	if mime.Is("image/jpeg") {
		return KindJPEG, mimeType, nil
	}
	if !mayContainVideo(mime) {
		return KindOther, mimeType, nil
	}

	result, err := probeInspect(ctx, c.ffprobeBinary, path)
	if err != nil {
		if ctx.Err() != nil {
			return KindUnknown, mimeType, ctx.Err()
		}
		if isOpaque(mime) {
			// Unrecognised binaries that ffprobe cannot open are just not media.
			c.logger.Debug("ffprobe rejected opaque file",
				logging.Path(path),
				logging.Error(err),
			)
			return KindOther, mimeType, nil
		}
		return KindUnknown, mimeType, services.Wrap(services.ErrExternalTool, "classify", "ffprobe", "inspect streams", err)
	}
	if result.HasVideoStream() {
		return KindVideo, mimeType, nil
	}
	return KindOther, mimeType, nil
}

// Efficiency reports whether the first video track was already encoded at or
// below the crf threshold. Missing or unparseable settings mean the file needs
// conversion; a file without a video track yields ErrNoVideoTrack.
func (c *Classifier) Efficiency(ctx context.Context, path string) (Efficiency, int, error) {
	result, err := mediaInspector(ctx, c.mediainfoBinary, path)
	if err != nil {
		if ctx.Err() != nil {
			return EfficiencyNotApplicable, UnknownCRF, ctx.Err()
		}
		return EfficiencyNotApplicable, UnknownCRF, services.Wrap(services.ErrExternalTool, "classify", "mediainfo", "read encoder settings", err)
	}
	track, ok := result.FirstVideoTrack()
	if !ok {
		return EfficiencyNotApplicable, UnknownCRF, fmt.Errorf("%s: %w", path, ErrNoVideoTrack)
	}
	crf, ok := ParseCRF(track.EncodedLibrarySettings)
	if !ok {
		return EfficiencyNeedsConversion, UnknownCRF, nil
	}
	if crf <= c.threshold {
		return EfficiencyEfficient, crf, nil
	}
	return EfficiencyNeedsConversion, crf, nil
}

// Classify combines Kind and Efficiency. JPEGs always qualify; videos qualify
// only when they need conversion.
func (c *Classifier) Classify(ctx context.Context, path string) (Classification, error) {
	out := Classification{Path: path, CRF: UnknownCRF}

	kind, mimeType, err := c.kind(ctx, path)
	out.Kind = kind
	out.MIME = mimeType
	if err != nil {
		return out, err
	}

	switch kind {
	case KindJPEG:
		out.Qualifies = true
	case KindVideo:
		efficiency, crf, err := c.Efficiency(ctx, path)
		if err != nil {
			return out, err
		}
		out.Efficiency = efficiency
		out.CRF = crf
		out.Qualifies = efficiency == EfficiencyNeedsConversion
	}
	return out, nil
}

// ParseCRF extracts the integer part of the first crf=<n> in an encoder
// settings string, so "crf=28.0" yields 28.
func ParseCRF(settings string) (int, bool) {
	match := crfPattern.FindStringSubmatch(strings.TrimSpace(settings))
	if len(match) < 2 {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return value, true
}

// mayContainVideo reports whether the sniffed type is worth an ffprobe call.
func mayContainVideo(mime *mimetype.MIME) bool {
	for m := mime; m != nil; m = m.Parent() {
		value := m.String()
		if strings.HasPrefix(value, "video/") || strings.HasPrefix(value, "audio/") {
			return true
		}
	}
	return isOpaque(mime)
}

func isOpaque(mime *mimetype.MIME) bool {
	return mime.Is("application/octet-stream")
}
