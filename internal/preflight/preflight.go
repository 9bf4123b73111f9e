package preflight

import (
	"context"
	"errors"
	"strings"

	"makeroom/internal/config"
	"makeroom/internal/deps"
	"makeroom/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Mode selects how much a run needs from its environment.
type Mode int

const (
	// ModeConvert writes sibling files and runs the encoders.
	ModeConvert Mode = iota
	// ModeReport only reads and classifies, as a dry run does.
	ModeReport
)

// RunAll executes the filesystem checks for a run over root. An empty root
// only checks the log directory.
func RunAll(cfg *config.Config, root string, mode Mode) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckDirectoryAccess("Log directory", cfg.Paths.LogDir)}
	if strings.TrimSpace(root) != "" {
		results = append(results, CheckRootAccess(root, mode))
	}
	return results
}

// FirstFailure converts the first failing result into a configuration error.
func FirstFailure(results []Result) error {
	for _, result := range results {
		if !result.Passed {
			return services.Wrap(services.ErrConfiguration, "preflight", result.Name, result.Detail, nil)
		}
	}
	return nil
}

// RequireTools fails when any non-optional dependency is unavailable.
func RequireTools(statuses []deps.Status) error {
	missing := deps.MissingRequired(statuses)
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "tools", "missing "+strings.Join(missing, ", "), errors.New("run 'makeroom check' for details"))
}

// CheckSystemDeps evaluates the external executables a run needs. ffmpeg
// and its libx265 encoder are optional in ModeReport.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, mode Mode) []deps.Status {
	reportOnly := mode == ModeReport
	statuses := deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for video re-encoding",
			Optional:    reportOnly,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for video track detection",
		},
		{
			Name:        "MediaInfo",
			Command:     cfg.Tools.MediaInfo,
			Description: "Required for encoder settings inspection",
		},
	})
	if statuses[0].Available {
		encoder := deps.CheckFFmpegEncoder(ctx, statuses[0].Command, "libx265")
		encoder.Optional = reportOnly
		statuses = append(statuses, encoder)
	}
	return statuses
}
