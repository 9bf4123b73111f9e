package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"makeroom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose log directory lives in a per-test temp dir.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBudget overrides the run budget.
func WithBudget(maxBytes int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Budget.MaxBytes = maxBytes
	}
}

// WithStubbedBinaries writes stub executables that exit 0 and points the
// tool config at them. With no names, ffmpeg, ffprobe, and mediainfo are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "mediainfo"}
		}
		for _, name := range names {
			WithStubScript(name, "#!/bin/sh\nexit 0\n")(b)
		}
	}
}

// WithStubScript writes an executable shell script under the test bin dir and
// wires it into the matching tool setting. Unknown names are only placed on PATH.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		target := StubBinary(b.t, binDir, name, script)
		switch name {
		case "ffmpeg":
			b.cfg.Tools.FFmpeg = target
		case "ffprobe":
			b.cfg.Tools.FFprobe = target
		case "mediainfo":
			b.cfg.Tools.MediaInfo = target
		}
		PrependPath(b.t, binDir)
	}
}

// StubBinary writes an executable script at dir/name and returns its path.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// PrependPath puts dir at the front of PATH for the duration of the test.
func PrependPath(t testing.TB, dir string) {
	t.Helper()
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
