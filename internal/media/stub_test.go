package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestStub_EncodesFailByDefault(t *testing.T) {
	s := NewStub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	out := filepath.Join(t.TempDir(), "out.mp4")

	err := s.EncodeRange(context.Background(), "src.mov", 0, 5, out, EncodeOptions{})
	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("EncodeRange() error = %v, want *EngineError", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("failed stub encode wrote an output file")
	}
	if s.EncodeCount() != 1 {
		t.Errorf("encode count = %d, want 1", s.EncodeCount())
	}
}

func TestStub_EncodeOKWritesArtifact(t *testing.T) {
	s := NewStub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.EncodeOK = true
	out := filepath.Join(t.TempDir(), "out.mp4")

	if err := s.Transcode(context.Background(), "src.mov", out, EncodeOptions{}); err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}
