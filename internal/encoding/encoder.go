package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"makeroom/internal/classify"
	"makeroom/internal/config"
	"makeroom/internal/logging"
	"makeroom/internal/services"
)

// ErrOutputExists is returned when the sibling output is already on disk.
var ErrOutputExists = errors.New("output already exists")

// Result describes a finished conversion.
type Result struct {
	Input       string
	Output      string
	Kind        classify.Kind
	OutputBytes int64
	Elapsed     time.Duration
}

// Encoder converts qualifying files into their smaller siblings.
type Encoder struct {
	video         config.Video
	quality       int
	ffmpeg        string
	conversionLog string
	logger        *slog.Logger
}

// New builds an encoder from the video, image, and tool settings in cfg.
func New(cfg *config.Config, logger *slog.Logger) *Encoder {
	return &Encoder{
		video:         cfg.Video,
		quality:       cfg.Image.Quality,
		ffmpeg:        cfg.Tools.FFmpeg,
		conversionLog: cfg.ConversionLogPath(),
		logger:        logging.NewComponentLogger(logger, "encoding"),
	}
}

// OutputPath returns where a conversion of path would be written.
func (e *Encoder) OutputPath(path string, kind classify.Kind) string {
	return OutputPath(e.video, path, kind)
}

// Convert writes the re-encoded sibling of path. The input is left untouched
// whether or not the conversion succeeds.
func (e *Encoder) Convert(ctx context.Context, path string, kind classify.Kind) (Result, error) {
	output := e.OutputPath(path, kind)
	result := Result{Input: path, Output: output, Kind: kind}

	if _, err := os.Lstat(output); err == nil {
		return result, fmt.Errorf("%s: %w", output, ErrOutputExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return result, services.Wrap(services.ErrTransient, "encoding", "stat output", output, err)
	}

	if err := vanished(path); err != nil {
		return result, err
	}

	started := time.Now()
	var err error
	switch kind {
	case classify.KindVideo:
		err = e.encodeVideo(ctx, path, output)
	case classify.KindJPEG:
		_, err = imageExport(ctx, path, output, e.quality)
		if err != nil {
			err = services.Wrap(services.ErrExternalTool, "encoding", "avif", "export image", err)
		}
	default:
		return result, services.Wrap(services.ErrValidation, "encoding", "convert", "unsupported kind "+kind.String(), nil)
	}
	result.Elapsed = time.Since(started)
	if err != nil {
		if gone := vanished(path); gone != nil {
			return result, gone
		}
		return result, err
	}

	info, err := os.Stat(output)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "encoding", "stat output", "encoder reported success but produced no output", err)
	}
	result.OutputBytes = info.Size()
	return result, nil
}

// VideoArgs returns the ffmpeg argument list for a libx265 re-encode.
func (e *Encoder) VideoArgs(input, output string) []string {
	args := []string{
		"-hide_banner", "-nostdin", "-n",
		"-i", input,
		"-map", "0:v:0", "-map", "0:a?",
		"-c:v", "libx265",
		"-crf", strconv.Itoa(e.video.CRF),
		"-preset", e.video.Preset,
	}
	if isMP4Family(output) {
		args = append(args, "-tag:v", "hvc1")
	}
	args = append(args,
		"-c:a", e.video.AudioCodec,
		"-b:a", e.video.AudioBitrate,
		output,
	)
	return args
}

func (e *Encoder) encodeVideo(ctx context.Context, input, output string) error {
	args := e.VideoArgs(input, output)
	e.logger.Debug("running ffmpeg",
		logging.Path(input),
		logging.String("command", e.ffmpeg+" "+strings.Join(args, " ")),
	)

	logFile, err := e.openConversionLog(input, output)
	if err != nil {
		return err
	}
	defer logFile.Close()

	tail := &tailBuffer{}
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	cmd.Stdout = logFile
	cmd.Stderr = io.MultiWriter(logFile, tail)
	if err := cmd.Run(); err != nil {
		detail := tail.String()
		if detail == "" {
			detail = "no diagnostic output"
		}
		return services.Wrap(services.ErrExternalTool, "encoding", "ffmpeg", detail, err)
	}
	return nil
}

// vanished reports a not-exist error when the input is no longer there.
func vanished(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return nil
}

func (e *Encoder) openConversionLog(input, output string) (io.WriteCloser, error) {
	file, err := os.OpenFile(e.conversionLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "encoding", "open conversion log", e.conversionLog, err)
	}
	header := fmt.Sprintf("=== %s %s -> %s\n", time.Now().UTC().Format(time.RFC3339), input, output)
	if _, err := io.WriteString(file, header); err != nil {
		file.Close()
		return nil, services.Wrap(services.ErrConfiguration, "encoding", "write conversion log", e.conversionLog, err)
	}
	return file, nil
}
