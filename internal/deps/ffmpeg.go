package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CheckFFmpegEncoder reports whether the ffmpeg build lists the named encoder.
func CheckFFmpegEncoder(ctx context.Context, ffmpegBinary, encoder string) Status {
	status := Status{
		Name:        encoder,
		Command:     ffmpegBinary,
		Description: "Required ffmpeg encoder",
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegBinary, "-hide_banner", "-encoders")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		status.Detail = fmt.Sprintf("ffmpeg -encoders failed: %v", err)
		return status
	}
	if hasEncoder(stdout.Bytes(), encoder) {
		status.Available = true
		return status
	}
	status.Detail = fmt.Sprintf("ffmpeg built without %s", encoder)
	return status
}

// hasEncoder scans `ffmpeg -encoders` output, whose rows look like
// " V....D libx265              libx265 H.265 / HEVC (codec hevc)".
func hasEncoder(listing []byte, encoder string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(listing))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}
