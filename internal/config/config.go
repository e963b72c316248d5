// Package config provides configuration management for the trimmer daemon.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort          = 5050
	DefaultLogLevel      = "info"
	DefaultDataDir       = "VideoTrimmer"
	DefaultMaxUploadMiB  = 500
	DefaultPreviewHeight = 720
	DefaultPreviewKbps   = 2000
	DefaultPreset        = "ultrafast"

	// Environment variable names
	EnvPort          = "TRIMMER_PORT"
	EnvLogLevel      = "TRIMMER_LOG_LEVEL"
	EnvDataDir       = "TRIMMER_DATA_DIR"
	EnvMaxUploadMiB  = "TRIMMER_MAX_UPLOAD_MIB"
	EnvTrimBuffer    = "TRIMMER_TRIM_BUFFER_SEC"
	EnvPreviewHeight = "TRIMMER_PREVIEW_MAX_HEIGHT"
	EnvPreviewKbps   = "TRIMMER_PREVIEW_BITRATE_KBPS"
	EnvPreset        = "TRIMMER_ENCODE_PRESET"
	EnvFFmpegPath    = "TRIMMER_FFMPEG"
	EnvFFprobePath   = "TRIMMER_FFPROBE"

	// Database filename
	DBFilename = "trimmer.db"

	// Engine timeouts
	DefaultProbeTimeout  = 30 * time.Second
	DefaultEncodeTimeout = 30 * time.Minute
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	UploadDir() string
	OutputDir() string
	PreviewDir() string
	MaxUploadBytes() int64
	TrimBufferSec() float64
	PreviewMaxHeight() int
	PreviewBitrateKbps() int
	EncodePreset() string
	FFmpegPath() string
	FFprobePath() string
	ProbeTimeout() time.Duration
	EncodeTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	maxUploadMiB  int64
	trimBufferSec float64
	previewHeight int
	previewKbps   int
	preset        string
	ffmpegPath    string
	ffprobePath   string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		maxUploadMiB:  DefaultMaxUploadMiB,
		previewHeight: DefaultPreviewHeight,
		previewKbps:   DefaultPreviewKbps,
		preset:        DefaultPreset,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if mu := os.Getenv(EnvMaxUploadMiB); mu != "" {
		mib, err := strconv.ParseInt(mu, 10, 64)
		if err != nil || mib < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvMaxUploadMiB)
		}
		cfg.maxUploadMiB = mib
	}

	if tb := os.Getenv(EnvTrimBuffer); tb != "" {
		buf, err := strconv.ParseFloat(tb, 64)
		if err != nil || buf < 0 {
			return nil, fmt.Errorf("invalid %s: must be a non-negative number of seconds", EnvTrimBuffer)
		}
		cfg.trimBufferSec = buf
	}

	if ph := os.Getenv(EnvPreviewHeight); ph != "" {
		h, err := strconv.Atoi(ph)
		if err != nil || h < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPreviewHeight)
		}
		cfg.previewHeight = h
	}

	if pb := os.Getenv(EnvPreviewKbps); pb != "" {
		kbps, err := strconv.Atoi(pb)
		if err != nil || kbps < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPreviewKbps)
		}
		cfg.previewKbps = kbps
	}

	if ps := os.Getenv(EnvPreset); ps != "" {
		cfg.preset = ps
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpegPath)
	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// UploadDir returns the directory holding uploaded source files
func (c *EnvConfig) UploadDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// OutputDir returns the directory holding trimmed output files
func (c *EnvConfig) OutputDir() string {
	return filepath.Join(c.dataDir, "output")
}

// PreviewDir returns the directory holding transcoded preview files
func (c *EnvConfig) PreviewDir() string {
	return filepath.Join(c.dataDir, "previews")
}

// MaxUploadBytes returns the maximum accepted upload size in bytes
func (c *EnvConfig) MaxUploadBytes() int64 {
	return c.maxUploadMiB * 1024 * 1024
}

// TrimBufferSec returns the symmetric widening applied to trim ranges.
// Zero disables buffering.
func (c *EnvConfig) TrimBufferSec() float64 {
	return c.trimBufferSec
}

func (c *EnvConfig) PreviewMaxHeight() int {
	return c.previewHeight
}

func (c *EnvConfig) PreviewBitrateKbps() int {
	return c.previewKbps
}

func (c *EnvConfig) EncodePreset() string {
	return c.preset
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

func (c *EnvConfig) ProbeTimeout() time.Duration {
	return DefaultProbeTimeout
}

func (c *EnvConfig) EncodeTimeout() time.Duration {
	return DefaultEncodeTimeout
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
