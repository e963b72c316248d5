package asset

import (
	"errors"
	"io/fs"
	"syscall"
)

// Sentinel errors for every failure the trim/preview core can surface.
// The HTTP layer maps these to status codes; the core never panics or
// terminates the process on a request-level failure.
var (
	// ErrNotFound means the asset id is unknown, even after the
	// upload-directory recovery scan.
	ErrNotFound = errors.New("asset not found")

	// ErrDuplicateID means Register was called with an id that already
	// exists. Should not occur given uuid generation, rejected defensively.
	ErrDuplicateID = errors.New("asset id already registered")

	// ErrInvalidInput covers bad uploads: missing file field, empty
	// filename, disallowed extension.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTimestamp means a start/end value could not be parsed to a
	// non-negative number of seconds.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidRange means start >= end.
	ErrInvalidRange = errors.New("start time must be before end time")

	// ErrSourceMissing means the on-disk source file vanished between asset
	// creation and the requested operation.
	ErrSourceMissing = errors.New("source file not found")

	// ErrEngineFailure means the media engine exited non-zero or was
	// interrupted mid-encode.
	ErrEngineFailure = errors.New("media engine failure")

	// ErrResourceExhausted means the filesystem refused the write: no space
	// left or permission denied. Kept distinct from ErrEngineFailure because
	// both are common, user-actionable cases.
	ErrResourceExhausted = errors.New("filesystem resource exhausted")

	// ErrNotTrimmed means a download was requested before any trim job
	// succeeded for the asset.
	ErrNotTrimmed = errors.New("asset has not been trimmed yet")
)

// ClassifyFSError maps a filesystem error onto the error taxonomy.
// ENOSPC and EACCES become ErrResourceExhausted so the caller can give
// concrete guidance (free disk space, fix folder permissions); everything
// else passes through unchanged.
func ClassifyFSError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		return errors.Join(ErrResourceExhausted, errors.New("no space left on device, free up disk space"))
	}
	if errors.Is(err, syscall.EACCES) || errors.Is(err, fs.ErrPermission) {
		return errors.Join(ErrResourceExhausted, errors.New("permission denied, check folder permissions"))
	}
	return err
}
