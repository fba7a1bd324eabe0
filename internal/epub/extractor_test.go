package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBook(t *testing.T, files map[string]string) string {
	t.Helper()

	bookPath := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(bookPath)
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

	return bookPath
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/book.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func pageNames(book *Book) []string {
	names := make([]string, len(book.Pages))
	for i, p := range book.Pages {
		names[i] = p.Name
	}
	return names
}

func TestExtractSpineOrderWithMarkupPage(t *testing.T) {
	// Spine is [xhtml referencing img1, img2]: extraction must follow
	// the spine, resolve the markup item's image, and deduplicate.
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="img1" href="images/img1.jpg" media-type="image/jpeg"/>
    <item id="img2" href="images/img2.png" media-type="image/png"/>
    <item id="p1" href="text/p1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="p1"/>
    <itemref idref="img2"/>
  </spine>
</package>`,
		"OEBPS/text/p1.xhtml":    `<html><body><img src="../images/img1.jpg"/></body></html>`,
		"OEBPS/images/img1.jpg":  "jpeg-one",
		"OEBPS/images/img2.png":  "png-two",
		"OEBPS/images/extra.gif": "never-in-spine",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	require.Len(t, book.Pages, 2)
	assert.Equal(t, []string{"OEBPS/images/img1.jpg", "OEBPS/images/img2.png"}, pageNames(book))
	assert.True(t, strings.HasPrefix(book.Pages[0].DataURL, "data:image/jpeg;base64,"))
	assert.True(t, strings.HasPrefix(book.Pages[1].DataURL, "data:image/png;base64,"))
	assert.Greater(t, book.FileSize, int64(0))
}

func TestExtractSpineOrderNotAlphabetical(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest>
    <item id="z" href="z.jpg" media-type="image/jpeg"/>
    <item id="a" href="a.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine>
    <itemref idref="z"/>
    <itemref idref="a"/>
  </spine>
</package>`,
		"OEBPS/z.jpg": "zz",
		"OEBPS/a.jpg": "aa",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"OEBPS/z.jpg", "OEBPS/a.jpg"}, pageNames(book))
}

func TestExtractDeduplicatesRepeatedSpineItems(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest>
    <item id="one" href="one.jpg" media-type="image/jpeg"/>
    <item id="two" href="two.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine>
    <itemref idref="one"/>
    <itemref idref="two"/>
    <itemref idref="one"/>
  </spine>
</package>`,
		"OEBPS/one.jpg": "one",
		"OEBPS/two.jpg": "two",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"OEBPS/one.jpg", "OEBPS/two.jpg"}, pageNames(book))
}

func TestExtractFallbackNaturalOrder(t *testing.T) {
	// No container.xml: fallback scan, numeric-aware name ordering.
	bookPath := writeBook(t, map[string]string{
		"page1.jpg":  "1",
		"page10.jpg": "10",
		"page2.jpg":  "2",
		"notes.txt":  "not a page",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"page1.jpg", "page2.jpg", "page10.jpg"}, pageNames(book))
}

func TestExtractFallbackWhenSpineYieldsNoImages(t *testing.T) {
	// Structure parses but no spine item resolves to an image entry.
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest>
    <item id="c1" href="text/c1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
  </spine>
</package>`,
		"OEBPS/text/c1.xhtml": `<html><body><p>no pictures here</p></body></html>`,
		"cover2.jpg":          "b",
		"cover1.jpg":          "a",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"cover1.jpg", "cover2.jpg"}, pageNames(book))
}

func TestExtractFallbackWhenPackageDocUnparsable(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf":         `<<<< not xml at all`,
		"p1.png":                 "x",
	})

	book, err := ExtractPages(bookPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1.png"}, pageNames(book))
}

func TestExtractMissingFile(t *testing.T) {
	_, err := ExtractPages(filepath.Join(t.TempDir(), "absent.epub"))
	assert.Error(t, err)
}

func TestDataURLSubtypes(t *testing.T) {
	assert.Equal(t, "jpeg", mimeSubtype("a/b.jpg"))
	assert.Equal(t, "jpeg", mimeSubtype("a/b.JPEG"))
	assert.Equal(t, "png", mimeSubtype("x.PNG"))
	assert.Equal(t, "webp", mimeSubtype("x.webp"))
	// Absent or unrecognized extensions default to jpeg.
	assert.Equal(t, "jpeg", mimeSubtype("noext"))
	assert.Equal(t, "jpeg", mimeSubtype("weird.tiff"))
}

func TestStatCountsImagesWithoutDecoding(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"a.jpg":     "x",
		"b.png":     "y",
		"notes.txt": "z",
	})

	stat, err := Stat(bookPath)
	require.NoError(t, err)
	assert.Equal(t, "book.epub", stat.FileName)
	assert.Equal(t, "book", stat.Title)
	assert.Equal(t, bookPath, stat.FilePath)
	assert.Equal(t, 2, stat.PageCount)
	assert.Greater(t, stat.FileSize, int64(0))
}

func TestStatUnreadableArchiveReportsZeroPages(t *testing.T) {
	bookPath := filepath.Join(t.TempDir(), "broken.epub")
	require.NoError(t, os.WriteFile(bookPath, []byte("garbage"), 0644))

	stat, err := Stat(bookPath)
	require.NoError(t, err)
	assert.Equal(t, 0, stat.PageCount)
	assert.Greater(t, stat.FileSize, int64(0))
}
