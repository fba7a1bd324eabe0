package epub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHref(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"same dir", "OEBPS/book.opf", "cover.jpg", "OEBPS/cover.jpg"},
		{"subdir", "OEBPS/book.opf", "images/p1.jpg", "OEBPS/images/p1.jpg"},
		{"parent dir", "OEBPS/text/p1.xhtml", "../images/p1.jpg", "OEBPS/images/p1.jpg"},
		{"dot segment", "OEBPS/book.opf", "./images/p1.jpg", "OEBPS/images/p1.jpg"},
		{"fragment stripped", "OEBPS/book.opf", "p1.xhtml#top", "OEBPS/p1.xhtml"},
		{"query stripped", "OEBPS/book.opf", "p1.jpg?v=2", "OEBPS/p1.jpg"},
		{"percent encoded", "OEBPS/book.opf", "my%20page.jpg", "OEBPS/my page.jpg"},
		{"root-level base", "book.opf", "p1.jpg", "p1.jpg"},
		{"escapes root", "OEBPS/book.opf", "../../etc/passwd", ""},
		{"absolute", "OEBPS/book.opf", "/p1.jpg", ""},
		{"empty", "OEBPS/book.opf", "", ""},
		{"fragment only", "OEBPS/book.opf", "#top", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveHref(tt.base, tt.href))
		})
	}
}

func TestFirstImageRef(t *testing.T) {
	assert.Equal(t, "a.jpg", firstImageRef([]byte(`<img src="a.jpg"/><img src="b.jpg"/>`)))
	assert.Equal(t, "a.jpg", firstImageRef([]byte(`<IMG class="page" SRC='a.jpg'>`)))
	assert.Equal(t, "c.png", firstImageRef([]byte(`<svg><image xlink:href="c.png"/></svg>`)))
	assert.Equal(t, "c.png", firstImageRef([]byte(`<svg><image href="c.png"/></svg>`)))
	// <img> wins over <image> regardless of document position.
	assert.Equal(t, "i.jpg", firstImageRef([]byte(`<image href="s.png"/><img src="i.jpg"/>`)))
	assert.Equal(t, "", firstImageRef([]byte(`<p>plain text</p>`)))
}

func TestResolvePageOrderFirstSpineWins(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest>
    <item id="a" href="a.jpg" media-type="image/jpeg"/>
    <item id="b" href="b.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine><itemref idref="a"/></spine>
  <spine><itemref idref="b"/></spine>
</package>`,
		"OEBPS/a.jpg": "a",
		"OEBPS/b.jpg": "b",
	})

	book, err := ExtractPages(bookPath)
	assert.NoError(t, err)
	assert.Equal(t, []string{"OEBPS/a.jpg"}, pageNames(book))
}

func TestResolvePageOrderFirstRootfileWins(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": `<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/book.opf" media-type="application/oebps-package+xml"/>
    <rootfile full-path="ALT/other.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest><item id="a" href="a.jpg" media-type="image/jpeg"/></manifest>
  <spine><itemref idref="a"/></spine>
</package>`,
		"ALT/other.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest><item id="b" href="b.jpg" media-type="image/jpeg"/></manifest>
  <spine><itemref idref="b"/></spine>
</package>`,
		"OEBPS/a.jpg": "a",
		"ALT/b.jpg":   "b",
	})

	book, err := ExtractPages(bookPath)
	assert.NoError(t, err)
	assert.Equal(t, []string{"OEBPS/a.jpg"}, pageNames(book))
}

func TestResolvePageOrderSkipsUnknownIdrefsAndMediaTypes(t *testing.T) {
	bookPath := writeBook(t, map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/book.opf": `<package xmlns="http://www.idpf.org/2007/opf">
  <manifest>
    <item id="css" href="style.css" media-type="text/css"/>
    <item id="a" href="a.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine>
    <itemref idref="missing"/>
    <itemref idref="css"/>
    <itemref idref="a"/>
  </spine>
</package>`,
		"OEBPS/style.css": "body{}",
		"OEBPS/a.jpg":     "a",
	})

	book, err := ExtractPages(bookPath)
	assert.NoError(t, err)
	assert.Equal(t, []string{"OEBPS/a.jpg"}, pageNames(book))
}
