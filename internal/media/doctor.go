package media

import (
	"time"
)

// Capabilities describes which engine binaries are actually usable.
type Capabilities struct {
	HasFFmpeg  bool      `json:"has_ffmpeg"`
	HasFFprobe bool      `json:"has_ffprobe"`
	ProbedAt   time.Time `json:"probed_at"`
}

// Available reports whether real probing and encoding can work at all.
func (c Capabilities) Available() bool {
	return c.HasFFmpeg && c.HasFFprobe
}

// Doctor checks whether the configured (or PATH-resolved) ffmpeg and
// ffprobe binaries exist. Surfaced via /health so a user can see why
// trims fail before trying one.
func Doctor(ffmpegPath, ffprobePath string) Capabilities {
	caps := Capabilities{ProbedAt: time.Now()}
	if _, err := resolveBinary(ffmpegPath, "ffmpeg"); err == nil {
		caps.HasFFmpeg = true
	}
	if _, err := resolveBinary(ffprobePath, "ffprobe"); err == nil {
		caps.HasFFprobe = true
	}
	return caps
}
