package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVideo()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir()
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if textfile := strings.TrimSpace(c.Metrics.Textfile); textfile != "" {
		if c.Metrics.Textfile, err = expandPath(textfile); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	} else {
		c.Metrics.Textfile = ""
	}
	return nil
}

func (c *Config) normalizeVideo() {
	c.Video.Preset = strings.ToLower(strings.TrimSpace(c.Video.Preset))
	if c.Video.Preset == "" {
		c.Video.Preset = defaultPreset
	}
	c.Video.AudioCodec = strings.ToLower(strings.TrimSpace(c.Video.AudioCodec))
	if c.Video.AudioCodec == "" {
		c.Video.AudioCodec = defaultAudioCodec
	}
	c.Video.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Video.AudioBitrate))
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
	c.Video.OutputMode = strings.ToLower(strings.TrimSpace(c.Video.OutputMode))
	if c.Video.OutputMode == "" {
		c.Video.OutputMode = OutputModeSuffix
	}
	c.Video.Suffix = strings.TrimSpace(c.Video.Suffix)
	if c.Video.Suffix == "" {
		c.Video.Suffix = defaultSuffix
	}
	c.Video.Container = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Video.Container)), ".")
	if c.Video.Container == "" {
		c.Video.Container = defaultContainer
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	c.Tools.MediaInfo = strings.TrimSpace(c.Tools.MediaInfo)
	if c.Tools.MediaInfo == "" {
		c.Tools.MediaInfo = defaultMediaInfo
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
