package stream

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testServer() *Server {
	return NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTestFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServeFile_Full(t *testing.T) {
	content := []byte("0123456789")
	path := writeTestFile(t, "clip.mp4", content)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video/x", nil)
	if err := testServer().ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
	if rec.Body.String() != string(content) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeFile_Partial(t *testing.T) {
	path := writeTestFile(t, "clip.mkv", []byte("0123456789"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video/x", nil)
	req.Header.Set("Range", "bytes=2-5")
	if err := testServer().ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}

	if rec.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "2345")
	}
	if got := rec.Header().Get("Content-Type"); got != "video/x-matroska" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestServeFile_MalformedRangeServesFullBody(t *testing.T) {
	path := writeTestFile(t, "clip.mp4", []byte("0123456789"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video/x", nil)
	req.Header.Set("Range", "bytes=oops")
	if err := testServer().ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeFile_Unsatisfiable(t *testing.T) {
	path := writeTestFile(t, "clip.mp4", []byte("0123456789"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video/x", nil)
	req.Header.Set("Range", "bytes=100-")
	if err := testServer().ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes */10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServeFile_Missing(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/video/x", nil)
	if err := testServer().ServeFile(rec, req, filepath.Join(t.TempDir(), "gone.mp4")); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServeDownload_Disposition(t *testing.T) {
	path := writeTestFile(t, "abc123_clip_trimmed.mp4", []byte("trimmed"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/download/x", nil)
	if err := testServer().ServeDownload(rec, req, path, "clip_trimmed.mp4"); err != nil {
		t.Fatalf("ServeDownload() error = %v", err)
	}

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="clip_trimmed.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != "trimmed" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.mp4", "video/mp4"},
		{"a.MOV", "video/quicktime"},
		{"a.webm", "video/webm"},
		{"a.unknown", "video/mp4"},
		{"noext", "video/mp4"},
	}
	for _, tt := range tests {
		if got := MimeType(tt.path); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
