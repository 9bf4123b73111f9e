package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"makeroom/internal/deps"
	"makeroom/internal/services"
	"makeroom/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRootAccess(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if result := CheckRootAccess(dir, ModeConvert); !result.Passed || !strings.Contains(result.Detail, "directory") {
		t.Fatalf("expected directory root to pass, got %+v", result)
	}
	if result := CheckRootAccess(file, ModeConvert); !result.Passed || !strings.Contains(result.Detail, "file") {
		t.Fatalf("expected file root to pass, got %+v", result)
	}
	if result := CheckRootAccess(filepath.Join(dir, "missing"), ModeConvert); result.Passed {
		t.Fatal("expected missing root to fail")
	}
}

func TestCheckRootAccess_ReadOnlyDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if result := CheckRootAccess(dir, ModeConvert); result.Passed {
		t.Fatalf("expected read-only root to fail, got %+v", result)
	}
	if result := CheckRootAccess(dir, ModeReport); !result.Passed {
		t.Fatalf("a dry run only needs to read the root, got %+v", result)
	}
}

func TestCheckSystemDepsReportModeWithoutFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffprobe", "mediainfo"))
	cfg.Tools.FFmpeg = filepath.Join(t.TempDir(), "no-such-ffmpeg")

	if err := RequireTools(CheckSystemDeps(context.Background(), cfg, ModeReport)); err != nil {
		t.Fatalf("dry run must not require ffmpeg: %v", err)
	}
	err := RequireTools(CheckSystemDeps(context.Background(), cfg, ModeConvert))
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "FFmpeg") {
		t.Fatalf("conversion run must require ffmpeg, got %v", err)
	}
}

func TestCheckSystemDepsReportModeWithoutLibx265(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := CheckSystemDeps(context.Background(), cfg, ModeReport)
	if err := RequireTools(statuses); err != nil {
		t.Fatalf("dry run must not require libx265: %v", err)
	}
	if err := RequireTools(CheckSystemDeps(context.Background(), cfg, ModeConvert)); err == nil {
		t.Fatal("expected missing libx265 to fail a conversion run")
	}
}

func TestRunAllAndFirstFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(cfg, t.TempDir(), ModeConvert)
	if len(results) != 2 {
		t.Fatalf("expected log dir and root checks, got %d", len(results))
	}
	if err := FirstFailure(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}

	results = RunAll(cfg, filepath.Join(t.TempDir(), "absent"), ModeConvert)
	err := FirstFailure(results)
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "Root path") {
		t.Fatalf("expected root path configuration error, got %v", err)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	listing := "#!/bin/sh\necho ' V....D libx265              libx265 H.265 / HEVC (codec hevc)'\n"
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("ffmpeg", listing),
		testsupport.WithStubbedBinaries("ffprobe", "mediainfo"),
	)

	statuses := CheckSystemDeps(context.Background(), cfg, ModeConvert)
	if len(statuses) != 4 {
		t.Fatalf("expected three binaries plus encoder check, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected %s available: %s", status.Name, status.Detail)
		}
	}
	if err := RequireTools(statuses); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireToolsReportsMissing(t *testing.T) {
	err := RequireTools([]deps.Status{
		{Name: "FFmpeg", Available: true},
		{Name: "MediaInfo"},
		{Name: "Extra", Optional: true},
	})
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "MediaInfo") {
		t.Fatalf("expected missing MediaInfo, got %v", err)
	}
	if strings.Contains(err.Error(), "Extra") {
		t.Fatalf("optional deps must not be required: %v", err)
	}
}
