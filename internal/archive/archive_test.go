package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.epub"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.epub")
	require.NoError(t, os.WriteFile(path, []byte("not an archive at all"), 0644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestEntriesSkipDirectories(t *testing.T) {
	path := writeZip(t, map[string]string{
		"OEBPS/":          "",
		"OEBPS/page1.jpg": "jpegdata",
		"mimetype":        "application/epub+zip",
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	names := make([]string, 0, len(r.Entries()))
	for _, e := range r.Entries() {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"OEBPS/page1.jpg", "mimetype"}, names)
}

func TestReadExactAndCaseFolded(t *testing.T) {
	path := writeZip(t, map[string]string{
		"META-INF/Container.xml": "<container/>",
	})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := r.Read("META-INF/Container.xml")
	require.NoError(t, err)
	assert.Equal(t, "<container/>", string(data))

	// Inconsistent case from the producer still resolves.
	data, err = r.Read("META-INF/container.xml")
	require.NoError(t, err)
	assert.Equal(t, "<container/>", string(data))

	_, err = r.Read("META-INF/absent.xml")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestReadOK(t *testing.T) {
	path := writeZip(t, map[string]string{"a.txt": "hello"})

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, ok := ReadOK(r, "a.txt")
	assert.True(t, ok)
	assert.Equal(t, "hello", string(data))

	_, ok = ReadOK(r, "b.txt")
	assert.False(t, ok)
}
