// Package asset implements the trim/preview core: the registry of uploaded
// videos, the artifact naming grammar, and the trim, preview and cleanup
// jobs that drive the media engine.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
)

// Options tunes job behavior. Zero values give the production defaults
// except PreviewMaxHeight/PreviewBitrateKbps, which a caller normally fills
// from config.
type Options struct {
	// TrimBufferSec symmetrically widens every trim range before encoding,
	// clamped to [0, duration]. Zero disables widening.
	TrimBufferSec float64

	PreviewMaxHeight   int
	PreviewBitrateKbps int
	EncodePreset       string

	ProbeTimeout  time.Duration
	EncodeTimeout time.Duration
}

// Service coordinates the registry, the media engine and the filesystem.
type Service struct {
	registry *Registry
	locator  Locator
	engine   media.Engine
	jobs     store.Repository // nil disables history recording
	logger   *slog.Logger
	opts     Options

	locks *keyedMutex
}

func NewService(registry *Registry, locator Locator, engine media.Engine, jobs store.Repository, logger *slog.Logger, opts Options) *Service {
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = 30 * time.Second
	}
	if opts.EncodeTimeout == 0 {
		opts.EncodeTimeout = 30 * time.Minute
	}
	return &Service{
		registry: registry,
		locator:  locator,
		engine:   engine,
		jobs:     jobs,
		logger:   logger,
		locks:    newKeyedMutex(),
		opts:     opts,
	}
}

// Registry exposes the underlying index, mainly for status reporting.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Lookup resolves an asset snapshot, falling back to the on-disk scan.
func (s *Service) Lookup(id string) (Asset, error) {
	return s.registry.Lookup(id)
}

// Upload stores the uploaded bytes under a fresh id and registers the
// asset. Disallowed extensions fail with ErrInvalidInput before anything
// touches the disk. Duration and codec are probed lazily later so large
// uploads return promptly.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (Asset, error) {
	if filename == "" {
		return Asset{}, fmt.Errorf("%w: no file selected", ErrInvalidInput)
	}
	if !AllowedFile(filename) {
		return Asset{}, fmt.Errorf("%w: file type not allowed", ErrInvalidInput)
	}

	id := NewID()
	sanitized := SanitizeFilename(filename)
	dst := s.locator.SourcePath(id, sanitized)

	if err := s.writeAtomic(dst, r); err != nil {
		return Asset{}, err
	}

	a := &Asset{
		ID:               id,
		OriginalFilename: sanitized,
		SourcePath:       dst,
		BrowserPlayable:  true,
		PreviewState:     PreviewAbsent,
		CreatedAt:        time.Now(),
	}
	if err := s.registry.Register(a); err != nil {
		os.Remove(dst)
		return Asset{}, err
	}

	s.logger.Info("asset uploaded", "asset_id", id, "filename", sanitized)
	return *a, nil
}

// writeAtomic copies r to a temporary path and renames into place, so a
// failed upload never leaves a partial source visible to the locator scan.
func (s *Service) writeAtomic(dst string, r io.Reader) error {
	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return ClassifyFSError(err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return ClassifyFSError(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return ClassifyFSError(err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return ClassifyFSError(err)
	}
	return nil
}

// Duration returns the asset's duration in seconds, probing and caching it
// on first access. A failed probe logs and reports 0 rather than erroring,
// so the UI can still render.
func (s *Service) Duration(ctx context.Context, id string) (float64, error) {
	a, err := s.registry.Lookup(id)
	if err != nil {
		return 0, err
	}
	if a.Duration > 0 {
		return a.Duration, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()

	dur, err := s.engine.ProbeDuration(probeCtx, a.SourcePath)
	if err != nil {
		s.logger.Warn("duration probe failed", "asset_id", id, "error", err)
		return 0, nil
	}

	s.registry.Update(id, func(a *Asset) { a.Duration = dur })
	return dur, nil
}

// Delete removes the asset's source, any trimmed output and any preview,
// then drops the registry entry. Removals are independent and best-effort;
// already-absent files and unknown ids still count as success.
func (s *Service) Delete(ctx context.Context, id string) error {
	seen := make(map[string]bool)
	var paths []string

	if a, err := s.registry.Lookup(id); err == nil {
		for _, p := range []string{a.SourcePath, a.TrimOutputPath, s.locator.PreviewPath(id)} {
			if p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	// The disk scan catches artifacts the registry never saw, e.g. trims
	// from before a restart.
	for _, p := range s.locator.ScanArtifacts(id) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove artifact", "asset_id", id, "path", p, "error", err)
		}
	}

	s.registry.Remove(id)
	s.logger.Info("asset deleted", "asset_id", id, "artifacts_removed", len(paths))
	return nil
}

// recordJob inserts a running job row; returns empty id when history is
// disabled or the insert fails (history is advisory, never fatal).
func (s *Service) recordJob(ctx context.Context, assetID, jobType string) string {
	if s.jobs == nil {
		return ""
	}
	job := store.NewJob(assetID, jobType)
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		s.logger.Warn("failed to record job", "asset_id", assetID, "type", jobType, "error", err)
		return ""
	}
	return job.ID
}

func (s *Service) finishJob(ctx context.Context, jobID, outputName string, jobErr error) {
	if s.jobs == nil || jobID == "" {
		return
	}
	status := store.JobStatusCompleted
	errMsg := ""
	if jobErr != nil {
		status = store.JobStatusFailed
		errMsg = jobErr.Error()
	}
	if err := s.jobs.FinishJob(ctx, jobID, status, outputName, errMsg); err != nil {
		s.logger.Warn("failed to finish job record", "job_id", jobID, "error", err)
	}
}
