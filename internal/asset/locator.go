package asset

import (
	"os"
	"path/filepath"
	"strings"
)

// Locator owns the on-disk naming grammar for every artifact an asset can
// produce:
//
//	upload:  {UploadDir}/{id}_{original_filename}
//	trim:    {OutputDir}/{id}_{output_name}
//	preview: {PreviewDir}/{id}_preview.mp4
//
// The id prefix makes the filesystem itself the source of truth: any
// artifact can be re-discovered from the identifier alone after the
// in-memory registry is lost to a restart.
type Locator struct {
	UploadDir  string
	OutputDir  string
	PreviewDir string
}

// PreviewSuffix is the fixed basename tail of every preview artifact.
const PreviewSuffix = "_preview.mp4"

// EnsureDirs creates the three artifact directories.
func (l Locator) EnsureDirs() error {
	for _, dir := range []string{l.UploadDir, l.OutputDir, l.PreviewDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// SourcePath returns the upload location for an asset's source bytes.
func (l Locator) SourcePath(id, filename string) string {
	return filepath.Join(l.UploadDir, id+"_"+filename)
}

// TrimPath returns the location of a trimmed output artifact.
func (l Locator) TrimPath(id, outputName string) string {
	return filepath.Join(l.OutputDir, id+"_"+outputName)
}

// PreviewPath returns the canonical preview location for an asset.
func (l Locator) PreviewPath(id string) string {
	return filepath.Join(l.PreviewDir, id+PreviewSuffix)
}

// ScanSource searches the upload directory for a file carrying the id
// prefix. It backs the registry's restart-recovery fallback. Returns the
// full path and the original filename recovered from the suffix, or
// ok=false when no matching file exists.
func (l Locator) ScanSource(id string) (path, filename string, ok bool) {
	entries, err := os.ReadDir(l.UploadDir)
	if err != nil {
		return "", "", false
	}

	prefix := id + "_"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(l.UploadDir, e.Name()), strings.TrimPrefix(e.Name(), prefix), true
		}
	}
	return "", "", false
}

// ScanArtifacts returns every on-disk artifact path associated with the id:
// the source, any trimmed outputs and any preview. Used by Cleanup so that
// deletion reaches files the in-memory registry never saw.
func (l Locator) ScanArtifacts(id string) []string {
	var paths []string
	prefix := id + "_"
	for _, dir := range []string{l.UploadDir, l.OutputDir, l.PreviewDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	return paths
}
