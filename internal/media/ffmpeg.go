package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

// FFmpeg is the production Engine backed by the ffmpeg and ffprobe
// binaries executed as subprocesses.
type FFmpeg struct {
	ffmpeg  string // resolved ffmpeg path
	ffprobe string // resolved ffprobe path
	logger  *slog.Logger
}

// NewFFmpeg creates an FFmpeg engine, resolving both binaries. Empty paths
// auto-detect from PATH.
func NewFFmpeg(ffmpegPath, ffprobePath string, logger *slog.Logger) (*FFmpeg, error) {
	ffmpeg, err := resolveBinary(ffmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	ffprobe, err := resolveBinary(ffprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	logger.Info("media engine initialised", "ffmpeg", ffmpeg, "ffprobe", ffprobe)
	return &FFmpeg{ffmpeg: ffmpeg, ffprobe: ffprobe, logger: logger}, nil
}

func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := f.probe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe duration %q: %w", strings.TrimSpace(out), err)
	}
	return dur, nil
}

func (f *FFmpeg) ProbeVideoCodec(ctx context.Context, path string) (string, error) {
	out, err := f.probe(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (f *FFmpeg) EncodeRange(ctx context.Context, src string, start, end float64, out string, opts EncodeOptions) error {
	// -ss before -i for fast seek, then -t for duration.
	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", src,
		"-t", fmt.Sprintf("%.3f", end-start),
	}
	args = append(args, encodeArgs(opts)...)
	args = append(args, out)
	return f.run(ctx, out, args)
}

func (f *FFmpeg) Transcode(ctx context.Context, src, out string, opts EncodeOptions) error {
	args := []string{"-y", "-i", src}
	args = append(args, encodeArgs(opts)...)
	args = append(args, out)
	return f.run(ctx, out, args)
}

func encodeArgs(opts EncodeOptions) []string {
	var args []string
	if opts.VideoCodec != "" {
		args = append(args, "-c:v", opts.VideoCodec)
	}
	if opts.AudioCodec != "" {
		args = append(args, "-c:a", opts.AudioCodec)
	}
	if opts.Preset != "" {
		args = append(args, "-preset", opts.Preset)
	}
	if opts.BitrateKbps > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.BitrateKbps))
	}
	if opts.MaxHeight > 0 {
		// Downscale only when the source exceeds the cap; -2 keeps the
		// width even, which libx264 requires.
		args = append(args, "-vf", fmt.Sprintf("scale=-2:'min(%d,ih)'", opts.MaxHeight))
	}
	if opts.PixelFormat != "" {
		args = append(args, "-pix_fmt", opts.PixelFormat)
	}
	if opts.Faststart {
		args = append(args, "-movflags", "+faststart")
	}
	return args
}

// probe runs ffprobe and returns its stdout.
func (f *FFmpeg) probe(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, f.ffprobe, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}

	if err := cmd.Run(); err != nil {
		return "", &EngineError{ExitCode: exitCode(err), StderrTail: stderr.String()}
	}
	return stdout.String(), nil
}

// run is the core ffmpeg execution helper.
func (f *FFmpeg) run(ctx context.Context, outPath string, args []string) error {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.ffmpeg, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard

	f.logger.Info("executing encode", "args", args)

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		engErr := &EngineError{ExitCode: exitCode(err), StderrTail: stderrBuf.String()}
		f.logger.Warn("encode failed",
			"exit_code", engErr.ExitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr_tail", truncate(engErr.StderrTail, 512),
		)
		return engErr
	}

	f.logger.Info("encode succeeded", "duration_ms", elapsed.Milliseconds(), "output", filepath.Base(outPath))
	return nil
}

func exitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// resolveBinary finds a usable binary, preferring an explicit path.
func resolveBinary(preferred, name string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured %s %q not found", name, preferred)
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("no %s binary found on PATH", name)
	}
	return p, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
