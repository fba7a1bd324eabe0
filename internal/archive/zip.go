package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

type zipReader struct {
	rc      *zip.ReadCloser
	entries []Entry
	byName  map[string]*zip.File
	byLower map[string]*zip.File
}

func openZip(path string) (*zipReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}

	zr := &zipReader{
		rc:      rc,
		byName:  make(map[string]*zip.File),
		byLower: make(map[string]*zip.File),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.ReplaceAll(f.Name, `\`, "/")
		zr.entries = append(zr.entries, Entry{Name: name, Size: int64(f.UncompressedSize64)})
		zr.byName[name] = f
		zr.byLower[strings.ToLower(name)] = f
	}
	return zr, nil
}

func (z *zipReader) Entries() []Entry {
	return z.entries
}

func (z *zipReader) Read(name string) ([]byte, error) {
	f, ok := z.byName[name]
	if !ok {
		f, ok = z.byLower[strings.ToLower(name)]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
