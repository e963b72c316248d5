package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
)

// Trim produces a new video spanning [start, end) of the asset's timeline
// and records it as the asset's trim output. startText/endText use the
// "12.500s" wire format; an empty endText defaults to the full duration.
// The produced display name is returned.
func (s *Service) Trim(ctx context.Context, id, startText, endText, customName string) (string, error) {
	a, err := s.registry.Lookup(id)
	if err != nil {
		return "", err
	}

	// The source may have been deleted between upload and trim.
	if _, err := os.Stat(a.SourcePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, a.SourcePath)
	}

	if startText == "" {
		startText = "0s"
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return "", err
	}

	duration := a.Duration
	if duration == 0 {
		duration, _ = s.Duration(ctx, id)
	}

	end := duration
	if endText != "" {
		end, err = ParseTimestamp(endText)
		if err != nil {
			return "", err
		}
	}

	// Clamp the requested end to the real duration when it is known, so a
	// start at or past the duration is rejected below instead of producing
	// an inverted pair once the buffer clamp kicks in.
	if duration > 0 && end > duration {
		end = duration
	}

	if start >= end {
		return "", fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange, FormatTimestamp(start), FormatTimestamp(end))
	}

	// Optional symmetric widening, clamped so the pair can never invert
	// and never exceeds the true duration. Applied only when the duration
	// is known, since the upper clamp is meaningless without it.
	if buf := s.opts.TrimBufferSec; buf > 0 && duration > 0 {
		start, end = widenRange(start, end, buf, duration)
	}

	outputName := trimOutputName(a.OriginalFilename, customName)
	outPath := s.locator.TrimPath(id, outputName)

	// Two trims for the same asset may run concurrently, but never two
	// writers of the same output path.
	lockKey := id + "/" + outputName
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	jobID := s.recordJob(ctx, id, store.JobTypeTrim)

	encCtx, cancel := context.WithTimeout(ctx, s.opts.EncodeTimeout)
	defer cancel()

	err = s.encodeAtomic(encCtx, outPath, func(tmp string) error {
		return s.engine.EncodeRange(encCtx, a.SourcePath, start, end, tmp, media.EncodeOptions{
			VideoCodec: "libx264",
			AudioCodec: "aac",
			Preset:     s.opts.EncodePreset,
		})
	})
	s.finishJob(context.WithoutCancel(ctx), jobID, outputName, err)
	if err != nil {
		return "", err
	}

	s.registry.Update(id, func(a *Asset) {
		a.TrimOutputPath = outPath
		a.TrimOutputName = outputName
	})

	s.logger.Info("trim completed", "asset_id", id, "output", outputName,
		"start", FormatTimestamp(start), "end", FormatTimestamp(end))
	return outputName, nil
}

// encodeAtomic runs encode against a temporary sibling path and renames
// into place on success, so a failed or interrupted encode never leaves a
// partial file at the final path. Failures are classified into the error
// taxonomy.
func (s *Service) encodeAtomic(ctx context.Context, outPath string, encode func(tmp string) error) error {
	// Keep the container extension so the engine infers the format.
	tmp := outPath + ".part" + filepath.Ext(outPath)

	if err := encode(tmp); err != nil {
		os.Remove(tmp)
		return classifyEncodeError(err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return ClassifyFSError(err)
	}
	return nil
}

func classifyEncodeError(err error) error {
	var engErr *media.EngineError
	if errors.As(err, &engErr) {
		if engErr.DiskFull() {
			return fmt.Errorf("%w: no space left on device, free up disk space", ErrResourceExhausted)
		}
		if engErr.PermissionDenied() {
			return fmt.Errorf("%w: permission denied writing output", ErrResourceExhausted)
		}
		return fmt.Errorf("%w: %s", ErrEngineFailure, engErr.Error())
	}
	if classified := ClassifyFSError(err); errors.Is(classified, ErrResourceExhausted) {
		return classified
	}
	return fmt.Errorf("%w: %v", ErrEngineFailure, err)
}

// widenRange applies the symmetric buffer with [0, duration] clamping.
func widenRange(start, end, buf, duration float64) (float64, float64) {
	start -= buf
	end += buf
	if start < 0 {
		start = 0
	}
	if end > duration {
		end = duration
	}
	return start, end
}

// trimOutputName derives the display name for a trimmed artifact:
// "{custom}.mp4" when a custom name is supplied, else
// "{original_stem}_trimmed.mp4".
func trimOutputName(originalFilename, customName string) string {
	if trimmed := strings.TrimSpace(customName); trimmed != "" {
		name := SanitizeFilename(trimmed)
		return strings.TrimSuffix(name, ".mp4") + ".mp4"
	}
	stem := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	return stem + "_trimmed.mp4"
}
