package media

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Stub is an Engine that performs no real media work. It stands in when
// ffmpeg is not installed (probes report unknown, encodes fail cleanly)
// and doubles as the test fake: tests preset its probe answers, opt into
// successful encodes, and count its encode invocations.
type Stub struct {
	logger *slog.Logger

	Duration  float64 // ProbeDuration answer
	Codec     string  // ProbeVideoCodec answer
	ProbeErr  error   // returned by both probes when set
	EncodeErr error   // returned by EncodeRange/Transcode when set
	EncodeOK  bool    // encodes write a placeholder artifact and succeed

	encodes atomic.Int64
}

func NewStub(logger *slog.Logger) *Stub {
	return &Stub{logger: logger}
}

func (s *Stub) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if s.ProbeErr != nil {
		return 0, s.ProbeErr
	}
	return s.Duration, nil
}

func (s *Stub) ProbeVideoCodec(ctx context.Context, path string) (string, error) {
	if s.ProbeErr != nil {
		return "", s.ProbeErr
	}
	return s.Codec, nil
}

func (s *Stub) EncodeRange(ctx context.Context, src string, start, end float64, out string, opts EncodeOptions) error {
	return s.encode(out)
}

func (s *Stub) Transcode(ctx context.Context, src, out string, opts EncodeOptions) error {
	return s.encode(out)
}

func (s *Stub) encode(out string) error {
	s.encodes.Add(1)
	if s.EncodeErr != nil {
		return s.EncodeErr
	}
	if !s.EncodeOK {
		return &EngineError{ExitCode: -1, StderrTail: "no media engine available, install ffmpeg"}
	}
	// Produce a placeholder artifact so path bookkeeping stays honest.
	return os.WriteFile(out, []byte("stub encode output"), 0644)
}

// EncodeCount reports how many encodes were attempted.
func (s *Stub) EncodeCount() int64 {
	return s.encodes.Load()
}
