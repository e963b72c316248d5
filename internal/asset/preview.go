package asset

import (
	"context"
	"os"

	"github.com/kdrivas1989/video-trimmer/internal/media"
	"github.com/kdrivas1989/video-trimmer/internal/store"
)

// PreviewStatus is the answer to a status poll: whether a preview artifact
// exists, whether the source itself is browser-playable, and which stream
// the player should request.
type PreviewStatus struct {
	Exists     bool
	Playable   bool
	UsePreview bool
}

// Playable reports whether the asset's native codec is in the
// browser-playable allow-list, probing it once and caching the answer.
// A failed or inconclusive probe fails open to playable.
func (s *Service) Playable(ctx context.Context, id string) (bool, error) {
	a, err := s.registry.Lookup(id)
	if err != nil {
		return false, err
	}
	if a.CodecProbed {
		return a.BrowserPlayable, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.opts.ProbeTimeout)
	defer cancel()

	codec, err := s.engine.ProbeVideoCodec(probeCtx, a.SourcePath)
	if err != nil {
		s.logger.Warn("codec probe failed, assuming playable", "asset_id", id, "error", err)
		codec = ""
	}

	playable := CodecPlayable(codec)
	s.registry.Update(id, func(a *Asset) {
		a.CodecProbed = true
		a.BrowserPlayable = playable
	})

	if !playable {
		s.logger.Info("asset needs preview transcode", "asset_id", id, "codec", codec)
	}
	return playable, nil
}

// Status answers a preview poll and, when the source needs a preview that
// does not exist yet, launches the transcode in the background so polling
// converges on exists=true.
func (s *Service) Status(ctx context.Context, id string) (PreviewStatus, error) {
	playable, err := s.Playable(ctx, id)
	if err != nil {
		return PreviewStatus{}, err
	}

	exists := fileExists(s.locator.PreviewPath(id))
	if !playable && !exists {
		s.StartPreview(id)
	}

	return PreviewStatus{
		Exists:     exists,
		Playable:   playable,
		UsePreview: !playable && exists,
	}, nil
}

// EnsurePreview idempotently produces the browser-compatible derived copy
// for a non-playable asset, at most once. Callers may invoke it
// concurrently; the per-id lock plus the canonical-path existence check
// guarantee a single transcode and a single published artifact. The
// artifact only becomes visible through the atomic rename, so readers can
// never observe a partial file. On failure the state reverts to absent so
// a retry is possible.
func (s *Service) EnsurePreview(ctx context.Context, id string) error {
	playable, err := s.Playable(ctx, id)
	if err != nil {
		return err
	}
	if playable {
		return nil // no preview needed
	}

	s.locks.Lock("preview/" + id)
	defer s.locks.Unlock("preview/" + id)

	previewPath := s.locator.PreviewPath(id)
	if fileExists(previewPath) {
		s.registry.Update(id, func(a *Asset) { a.PreviewState = PreviewReady })
		return nil
	}

	a, err := s.registry.Lookup(id)
	if err != nil {
		return err
	}

	s.registry.Update(id, func(a *Asset) { a.PreviewState = PreviewPending })

	jobID := s.recordJob(ctx, id, store.JobTypePreview)

	encCtx, cancel := context.WithTimeout(ctx, s.opts.EncodeTimeout)
	defer cancel()

	err = s.encodeAtomic(encCtx, previewPath, func(tmp string) error {
		return s.engine.Transcode(encCtx, a.SourcePath, tmp, media.EncodeOptions{
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			Preset:      s.opts.EncodePreset,
			BitrateKbps: s.opts.PreviewBitrateKbps,
			MaxHeight:   s.opts.PreviewMaxHeight,
			PixelFormat: "yuv420p",
			Faststart:   true,
		})
	})
	s.finishJob(context.WithoutCancel(ctx), jobID, "", err)

	if err != nil {
		s.registry.Update(id, func(a *Asset) { a.PreviewState = PreviewAbsent })
		return err
	}

	s.registry.Update(id, func(a *Asset) { a.PreviewState = PreviewReady })
	s.logger.Info("preview ready", "asset_id", id)
	return nil
}

// StartPreview launches EnsurePreview as a detached background task so the
// caller's request returns promptly. The per-id lock inside EnsurePreview
// keeps near-simultaneous launches down to one transcode.
func (s *Service) StartPreview(id string) {
	go func() {
		if err := s.EnsurePreview(context.Background(), id); err != nil {
			s.logger.Warn("background preview failed", "asset_id", id, "error", err)
		}
	}()
}

// PreviewPath resolves the canonical preview location, whether or not the
// artifact exists yet.
func (s *Service) PreviewPath(id string) string {
	return s.locator.PreviewPath(id)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
