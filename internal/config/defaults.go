package config

const (
	defaultConfigPath   = "~/.config/makeroom/config.toml"
	defaultMaxBytes     = 2_000_000_000
	defaultCRF          = 28
	defaultPreset       = "medium"
	defaultAudioCodec   = "aac"
	defaultAudioBitrate = "128k"
	defaultSuffix       = "-c"
	defaultContainer    = "mkv"
	defaultImageQuality = 70
	defaultFFmpeg       = "ffmpeg"
	defaultFFprobe      = "ffprobe"
	defaultMediaInfo    = "mediainfo"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

const (
	// OutputModeSuffix inserts the configured suffix before the input extension.
	OutputModeSuffix = "suffix"
	// OutputModeContainer replaces the extension with the configured container.
	OutputModeContainer = "container"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir(),
		},
		Budget: Budget{
			MaxBytes:  defaultMaxBytes,
			Recursive: true,
		},
		Video: Video{
			CRF:          defaultCRF,
			Preset:       defaultPreset,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			OutputMode:   OutputModeSuffix,
			Suffix:       defaultSuffix,
			Container:    defaultContainer,
		},
		Image: Image{
			Quality: defaultImageQuality,
		},
		Tools: Tools{
			FFmpeg:    defaultFFmpeg,
			FFprobe:   defaultFFprobe,
			MediaInfo: defaultMediaInfo,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
