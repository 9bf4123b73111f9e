// Package mediainfo wraps the mediainfo CLI's JSON output.
package mediainfo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the decoded mediainfo report for one file.
type Result struct {
	Media Media `json:"media"`
}

// Media holds the per-track entries.
type Media struct {
	Ref    string  `json:"@ref"`
	Tracks []Track `json:"track"`
}

// Track is a single mediainfo track. Only the fields the classifier reads are decoded.
type Track struct {
	Type                   string `json:"@type"`
	Format                 string `json:"Format"`
	EncodedLibraryName     string `json:"Encoded_Library_Name"`
	EncodedLibrarySettings string `json:"Encoded_Library_Settings"`
}

// Inspect runs mediainfo --Output=JSON against path.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("mediainfo inspect: empty path")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "--Output=JSON", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("mediainfo inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("mediainfo parse: %w", err)
	}
	return result, nil
}

// FirstVideoTrack returns the first track typed "Video".
func (r Result) FirstVideoTrack() (Track, bool) {
	for _, track := range r.Media.Tracks {
		if strings.EqualFold(track.Type, "Video") {
			return track, true
		}
	}
	return Track{}, false
}
