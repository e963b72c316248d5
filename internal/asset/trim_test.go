package asset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kdrivas1989/video-trimmer/internal/media"
)

func TestTrim_Success(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, l := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	outputName, err := svc.Trim(context.Background(), a.ID, "2.000s", "7.000s", "")
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if outputName != "clip_trimmed.mp4" {
		t.Errorf("output name = %s, want clip_trimmed.mp4", outputName)
	}

	outPath := l.TrimPath(a.ID, outputName)
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("trim output missing: %v", err)
	}
	if _, err := os.Stat(outPath + ".part" + filepath.Ext(outPath)); err == nil {
		t.Error("temporary encode file left behind")
	}

	if len(eng.ranges) != 1 || eng.ranges[0] != [2]float64{2.0, 7.0} {
		t.Errorf("encoded range = %v, want [2 7]", eng.ranges)
	}

	got, _ := svc.Lookup(a.ID)
	if got.TrimOutputName != "clip_trimmed.mp4" {
		t.Errorf("TrimOutputName = %s, want clip_trimmed.mp4", got.TrimOutputName)
	}
	if got.TrimOutputPath != outPath {
		t.Errorf("TrimOutputPath = %s, want %s", got.TrimOutputPath, outPath)
	}
}

func TestTrim_CustomName(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, _ := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	outputName, err := svc.Trim(context.Background(), a.ID, "0s", "5s", "  highlight ")
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if outputName != "highlight.mp4" {
		t.Errorf("output name = %s, want highlight.mp4", outputName)
	}
}

func TestTrim_EmptyEndDefaultsToDuration(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, _ := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	if _, err := svc.Trim(context.Background(), a.ID, "2s", "", ""); err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if len(eng.ranges) != 1 || eng.ranges[0] != [2]float64{2.0, 10.0} {
		t.Errorf("encoded range = %v, want [2 10]", eng.ranges)
	}
}

func TestTrim_InvalidRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"start equals end", "5s", "5s"},
		{"start after end", "7s", "2s"},
		{"both zero", "0s", "0s"},
		{"whole range past duration", "15s", "16s"},
		{"start at duration", "10s", "12s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{duration: 10.0}
			svc, _ := newTestService(t, eng, Options{})
			a := uploadTestAsset(t, svc, "clip.mov")

			_, err := svc.Trim(context.Background(), a.ID, tt.start, tt.end, "")
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Trim() error = %v, want ErrInvalidRange", err)
			}
			if eng.encodeCount() != 0 {
				t.Error("invalid range reached the engine")
			}
		})
	}
}

func TestTrim_InvalidTimestamp(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, _ := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	for _, ts := range []string{"abc", "-2s", "1.2.3"} {
		if _, err := svc.Trim(context.Background(), a.ID, ts, "5s", ""); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Trim(start=%q) error = %v, want ErrInvalidTimestamp", ts, err)
		}
	}
}

func TestTrim_UnknownAsset(t *testing.T) {
	svc, _ := newTestService(t, &fakeEngine{}, Options{})

	if _, err := svc.Trim(context.Background(), "nope", "0s", "5s", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Trim() error = %v, want ErrNotFound", err)
	}
}

func TestTrim_SourceMissing(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, _ := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	if err := os.Remove(a.SourcePath); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, err := svc.Trim(context.Background(), a.ID, "0s", "5s", ""); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Trim() error = %v, want ErrSourceMissing", err)
	}
}

func TestTrim_BufferWidensAndClamps(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantStart  float64
		wantEnd    float64
	}{
		{"interior range widens both ways", "3s", "6s", 1.0, 8.0},
		{"clamped at zero", "1s", "5s", 0.0, 7.0},
		{"clamped at duration", "6s", "9s", 4.0, 10.0},
		{"clamped both ends", "0.5s", "9.5s", 0.0, 10.0},
		{"end past duration clamps first", "8s", "20s", 6.0, 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{duration: 10.0}
			svc, _ := newTestService(t, eng, Options{TrimBufferSec: 2.0})
			a := uploadTestAsset(t, svc, "clip.mov")

			if _, err := svc.Trim(context.Background(), a.ID, tt.start, tt.end, ""); err != nil {
				t.Fatalf("Trim() error = %v", err)
			}
			got := eng.ranges[len(eng.ranges)-1]
			if got[0] != tt.wantStart || got[1] != tt.wantEnd {
				t.Errorf("encoded range = %v, want [%v %v]", got, tt.wantStart, tt.wantEnd)
			}
			if got[0] >= got[1] {
				t.Errorf("buffering inverted the range: %v", got)
			}
		})
	}
}

func TestTrim_BufferNeverInvertsOutOfBoundsRange(t *testing.T) {
	eng := &fakeEngine{duration: 10.0}
	svc, _ := newTestService(t, eng, Options{TrimBufferSec: 2.0})
	a := uploadTestAsset(t, svc, "clip.mov")

	_, err := svc.Trim(context.Background(), a.ID, "15s", "16s", "")
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Trim() error = %v, want ErrInvalidRange", err)
	}
	if eng.encodeCount() != 0 {
		t.Error("out-of-bounds range reached the engine")
	}
}

func TestTrim_EngineFailureClassified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"generic exit", &media.EngineError{ExitCode: 1, StderrTail: "boom"}, ErrEngineFailure},
		{"disk full", &media.EngineError{ExitCode: 1, StderrTail: "No space left on device"}, ErrResourceExhausted},
		{"permission denied", &media.EngineError{ExitCode: 1, StderrTail: "Permission denied"}, ErrResourceExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{duration: 10.0, encodeErr: tt.err}
			svc, l := newTestService(t, eng, Options{})
			a := uploadTestAsset(t, svc, "clip.mov")

			_, err := svc.Trim(context.Background(), a.ID, "0s", "5s", "")
			if !errors.Is(err, tt.want) {
				t.Errorf("Trim() error = %v, want %v", err, tt.want)
			}

			// A failed encode must not leave anything at or near the
			// final path.
			entries, _ := os.ReadDir(l.OutputDir)
			if len(entries) != 0 {
				t.Errorf("failed trim left %d files in output dir", len(entries))
			}
		})
	}
}

func TestTrim_SameOutputNameSerialized(t *testing.T) {
	eng := &fakeEngine{duration: 10.0, encodeDelay: 20 * time.Millisecond}
	svc, l := newTestService(t, eng, Options{})
	a := uploadTestAsset(t, svc, "clip.mov")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Trim(context.Background(), a.ID, "0s", "5s", "same"); err != nil {
				t.Errorf("Trim() error = %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(l.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("found %d output files, want 1", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), "_same.mp4") {
		t.Errorf("output file = %s, want *_same.mp4", entries[0].Name())
	}
}
