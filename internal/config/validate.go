package config

import (
	"errors"
	"fmt"
	"strings"
)

var x265Presets = map[string]struct{}{
	"ultrafast": {}, "superfast": {}, "veryfast": {}, "faster": {}, "fast": {},
	"medium": {}, "slow": {}, "slower": {}, "veryslow": {}, "placebo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBudget(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBudget() error {
	if c.Budget.MaxBytes <= 0 {
		return errors.New("budget.max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ValidateCRF(c.Video.CRF); err != nil {
		return err
	}
	if _, ok := x265Presets[c.Video.Preset]; !ok {
		return fmt.Errorf("video.preset %q is not a libx265 preset", c.Video.Preset)
	}
	if err := ValidateOutputMode(c.Video.OutputMode); err != nil {
		return err
	}
	if strings.ContainsAny(c.Video.Suffix, `/\`) {
		return fmt.Errorf("video.suffix %q must not contain path separators", c.Video.Suffix)
	}
	if strings.ContainsAny(c.Video.Container, `/\`) {
		return fmt.Errorf("video.container %q must not contain path separators", c.Video.Container)
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return errors.New("image.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

// ValidateCRF reports whether crf is inside the libx265 range.
func ValidateCRF(crf int) error {
	if crf < 0 || crf > 51 {
		return fmt.Errorf("video.crf must be between 0 and 51, got %d", crf)
	}
	return nil
}

// ValidateOutputMode reports whether mode names a supported output naming scheme.
func ValidateOutputMode(mode string) error {
	switch mode {
	case OutputModeSuffix, OutputModeContainer:
		return nil
	default:
		return fmt.Errorf("video.output_mode %q must be %q or %q", mode, OutputModeSuffix, OutputModeContainer)
	}
}
