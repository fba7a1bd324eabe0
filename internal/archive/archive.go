package archive

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors returned by this package.
var (
	// ErrNotFound indicates the archive file does not exist on disk.
	ErrNotFound = errors.New("archive: file not found")

	// ErrCorrupt indicates the file exists but no backend can open it.
	ErrCorrupt = errors.New("archive: unreadable or corrupt archive")

	// ErrEntryNotFound indicates the named entry is absent from the archive.
	ErrEntryNotFound = errors.New("archive: entry not found")
)

// Entry describes one member of an open archive. Names use forward
// slashes regardless of the producing platform.
type Entry struct {
	Name string
	Size int64
}

// Reader exposes an open book archive. Entry names are indexed when the
// archive is opened; entry bytes are decoded lazily, one Read at a time.
type Reader interface {
	// Entries returns all non-directory members in archive order.
	Entries() []Entry

	// Read returns the decompressed bytes of the named entry. Lookup
	// tries the exact name first, then a case-folded match, since some
	// producers emit inconsistent case. Returns ErrEntryNotFound when
	// neither matches.
	Read(name string) ([]byte, error)

	Close() error
}

// Open opens a book archive. Zip is tried first; on failure the rar
// backend is tried, so .cbz and .cbr containers go through the same
// call sites. Returns ErrNotFound when the file is missing and
// ErrCorrupt when neither backend can read it.
func Open(path string) (Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	zr, zipErr := openZip(path)
	if zipErr == nil {
		return zr, nil
	}

	rr, rarErr := openRar(path)
	if rarErr == nil {
		return rr, nil
	}

	return nil, fmt.Errorf("%w: %s (zip: %v, rar: %v)", ErrCorrupt, path, zipErr, rarErr)
}

// ReadOK is a convenience wrapper that treats a missing entry as a
// non-error miss, for callers that probe optional entries.
func ReadOK(r Reader, name string) ([]byte, bool) {
	data, err := r.Read(name)
	if err != nil {
		return nil, false
	}
	return data, true
}
