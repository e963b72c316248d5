// Package media adapts the external ffmpeg/ffprobe binaries behind a small
// engine contract: probe duration and codec, re-encode a time range, and
// transcode a whole file for browser preview. The trim/preview core depends
// on this contract, never on ffmpeg directly.
package media

import (
	"context"
	"fmt"
	"strings"
)

// Engine is the media probing and encoding capability the core depends on.
type Engine interface {
	// ProbeDuration reports the container duration in seconds.
	ProbeDuration(ctx context.Context, path string) (float64, error)

	// ProbeVideoCodec reports the primary video stream's codec tag, or ""
	// when the probe is inconclusive.
	ProbeVideoCodec(ctx context.Context, path string) (string, error)

	// EncodeRange re-encodes [start, end) seconds of src into out.
	EncodeRange(ctx context.Context, src string, start, end float64, out string, opts EncodeOptions) error

	// Transcode re-encodes the whole of src into out.
	Transcode(ctx context.Context, src, out string, opts EncodeOptions) error
}

// EncodeOptions selects codecs and browser-compatibility flags for an
// encode. Zero values mean "leave it to ffmpeg defaults".
type EncodeOptions struct {
	VideoCodec  string // e.g. "libx264"
	AudioCodec  string // e.g. "aac"
	Preset      string // encoder speed/quality preset
	BitrateKbps int    // target video bitrate; 0 = unset
	MaxHeight   int    // downscale cap preserving aspect ratio; 0 = no scaling
	Faststart   bool   // mp4 moov box up front for progressive playback
	PixelFormat string // e.g. "yuv420p" for baseline-profile compatibility
}

// EngineError carries the diagnostics of a failed engine invocation.
type EngineError struct {
	ExitCode   int
	StderrTail string
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("engine exited %d", e.ExitCode)
	if e.StderrTail != "" {
		msg += ": " + e.StderrTail
	}
	return msg
}

// DiskFull reports whether the failure looks like filesystem exhaustion.
func (e *EngineError) DiskFull() bool {
	return strings.Contains(e.StderrTail, "No space left on device")
}

// PermissionDenied reports whether the failure looks like a permissions
// problem on the output location.
func (e *EngineError) PermissionDenied() bool {
	return strings.Contains(e.StderrTail, "Permission denied")
}
