package asset

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry(testLocator(t), nil)

	a := &Asset{ID: "a1", OriginalFilename: "clip.mov", SourcePath: "/tmp/a1_clip.mov", CreatedAt: time.Now()}
	if err := r.Register(a); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Lookup("a1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.OriginalFilename != "clip.mov" {
		t.Errorf("Lookup().OriginalFilename = %s, want clip.mov", got.OriginalFilename)
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	r := NewRegistry(testLocator(t), nil)

	if err := r.Register(&Asset{ID: "a1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	err := r.Register(&Asset{ID: "a1"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Register() error = %v, want ErrDuplicateID", err)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry(testLocator(t), nil)

	_, err := r.Lookup("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestRegistry_RecoversFromDisk(t *testing.T) {
	l := testLocator(t)

	// Simulate a restart: a source file exists but the registry is empty.
	src := l.SourcePath("lost", "clip.mov")
	if err := os.WriteFile(src, []byte("data"), 0644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	r := NewRegistry(l, nil)
	got, err := r.Lookup("lost")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.SourcePath != src {
		t.Errorf("recovered SourcePath = %s, want %s", got.SourcePath, src)
	}
	if got.OriginalFilename != "clip.mov" {
		t.Errorf("recovered OriginalFilename = %s, want clip.mov", got.OriginalFilename)
	}
	if got.Duration != 0 {
		t.Errorf("recovered Duration = %v, want 0 (unknown)", got.Duration)
	}
	if !got.BrowserPlayable {
		t.Error("recovered asset should default to playable")
	}

	// Recovered assets are re-registered, so mutations stick.
	if err := r.Update("lost", func(a *Asset) { a.Duration = 10 }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = r.Lookup("lost")
	if got.Duration != 10 {
		t.Errorf("Duration after Update = %v, want 10", got.Duration)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(testLocator(t), nil)

	r.Register(&Asset{ID: "a1"})
	r.Remove("a1")

	if _, err := r.Lookup("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after Remove error = %v, want ErrNotFound", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}
