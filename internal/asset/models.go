package asset

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// PreviewState tracks the lifecycle of an asset's derived preview artifact.
type PreviewState string

const (
	PreviewAbsent  PreviewState = "absent"
	PreviewPending PreviewState = "pending"
	PreviewReady   PreviewState = "ready"
)

// Asset represents one uploaded video and its derived artifacts.
// The id doubles as the filename prefix for every on-disk artifact, so any
// of them can be located from the id alone after a process restart. Fields
// mutated after creation (duration, playability, preview state, trim output)
// are guarded by the owning Registry's lock.
type Asset struct {
	ID               string       `json:"id"`
	OriginalFilename string       `json:"filename"`
	SourcePath       string       `json:"source_path"`
	Duration         float64      `json:"duration"` // seconds; 0 = not yet probed
	BrowserPlayable  bool         `json:"browser_playable"`
	CodecProbed      bool         `json:"-"`
	PreviewState     PreviewState `json:"preview_state"`
	TrimOutputPath   string       `json:"-"`
	TrimOutputName   string       `json:"trim_output_name,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// AllowedExtensions is the upload extension allow-list (without dots).
var AllowedExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"wmv":  true,
	"flv":  true,
	"webm": true,
	"mts":  true,
}

// PlayableCodecs is the fixed allow-list of codec tags common web video
// players decode without server-side conversion.
var PlayableCodecs = map[string]bool{
	"h264": true,
	"avc1": true,
	"vp8":  true,
	"vp9":  true,
	"av1":  true,
}

// NewID returns a fresh opaque asset identifier. IDs are never reused.
func NewID() string {
	return uuid.NewString()
}

// AllowedFile reports whether filename carries an extension from the
// upload allow-list.
func AllowedFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && AllowedExtensions[ext]
}

// CodecPlayable reports whether a probed codec tag is browser-playable.
// An empty tag (probe failed or inconclusive) fails open to playable:
// occasionally serving an unplayable original beats forcing every upload
// through a slow transcode.
func CodecPlayable(codec string) bool {
	if codec == "" {
		return true
	}
	return PlayableCodecs[strings.ToLower(codec)]
}

// SanitizeFilename strips control characters and path-hostile runes from a
// user-supplied filename, keeping letters, digits and a small punctuation
// set. Returns "video" plus the original extension when nothing survives.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if stem := strings.TrimSuffix(cleaned, filepath.Ext(cleaned)); strings.Trim(stem, "._ ") == "" {
		cleaned = "video" + strings.ToLower(filepath.Ext(name))
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}
