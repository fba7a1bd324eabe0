package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// rarReader indexes entry names in one pass and re-scans the archive on
// each Read. rardecode only streams forward, so random access means a
// fresh open per entry.
type rarReader struct {
	path    string
	entries []Entry
}

func openRar(path string) (*rarReader, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rr := &rarReader{path: path}
	for {
		header, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.IsDir {
			continue
		}
		name := strings.ReplaceAll(header.Name, `\`, "/")
		rr.entries = append(rr.entries, Entry{Name: name, Size: header.UnPackedSize})
	}
	return rr, nil
}

func (r *rarReader) Entries() []Entry {
	return r.entries
}

func (r *rarReader) Read(name string) ([]byte, error) {
	data, err := r.scanFor(func(entryName string) bool { return entryName == name })
	if err == nil {
		return data, nil
	}
	data, err = r.scanFor(func(entryName string) bool { return strings.EqualFold(entryName, name) })
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return data, nil
}

func (r *rarReader) scanFor(match func(string) bool) ([]byte, error) {
	rc, err := rardecode.OpenReader(r.path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	for {
		header, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.IsDir {
			continue
		}
		if match(strings.ReplaceAll(header.Name, `\`, "/")) {
			return io.ReadAll(rc)
		}
	}
	return nil, ErrEntryNotFound
}

func (r *rarReader) Close() error {
	return nil
}
