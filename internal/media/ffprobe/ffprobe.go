package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index       int         `json:"index"`
	CodecName   string      `json:"codec_name"`
	CodecType   string      `json:"codec_type"`
	CodecTag    string      `json:"codec_tag_string"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Disposition Disposition `json:"disposition"`
}

// Disposition carries the ffprobe stream flags the classifier cares about.
type Disposition struct {
	Default     int `json:"default"`
	AttachedPic int `json:"attached_pic"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
// On failure the returned error carries ffprobe's stderr.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// IsVideo reports whether the stream is a moving-picture track rather than embedded cover art.
func (s Stream) IsVideo() bool {
	return strings.EqualFold(s.CodecType, "video") && s.Disposition.AttachedPic == 0
}

// VideoStreamCount returns the number of video streams, excluding attached pictures.
func (r Result) VideoStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if stream.IsVideo() {
			count++
		}
	}
	return count
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// HasVideoStream reports whether at least one real video track is present.
func (r Result) HasVideoStream() bool {
	return r.VideoStreamCount() > 0
}

// PrimaryVideo returns the first real video track.
func (r Result) PrimaryVideo() (Stream, bool) {
	for _, stream := range r.Streams {
		if stream.IsVideo() {
			return stream, true
		}
	}
	return Stream{}, false
}

// IsHEVC reports whether the first video track is already H.265.
func (r Result) IsHEVC() bool {
	stream, ok := r.PrimaryVideo()
	if !ok {
		return false
	}
	switch strings.ToLower(stream.CodecName) {
	case "hevc", "h265":
		return true
	default:
		return false
	}
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}
