package epub

import (
	"encoding/base64"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/epubread/epubread/internal/archive"
	"github.com/epubread/epubread/internal/models"
)

// Page is one displayable page image, with its payload inlined as a
// base64 data URL.
type Page struct {
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
}

// Book is the result of a full page extraction.
type Book struct {
	Pages    []Page `json:"items"`
	FileSize int64  `json:"fileSize"`
}

// BookStat is the lightweight list-view summary of a book file. No
// image payload is decoded to produce it.
type BookStat struct {
	FileSize  int64  `json:"fileSize"`
	FileName  string `json:"fileName"`
	FilePath  string `json:"filePath"`
	Title     string `json:"title"`
	PageCount int    `json:"pageCount"`
}

// imageExtensions lists the page image types the extractor recognizes.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ExtractPages opens a book archive and returns its page images in
// reading order. The spine-declared order is authoritative when the
// package structure resolves; otherwise all image entries are returned
// sorted by numeric-aware natural filename order. An error is returned
// only when the archive itself cannot be opened; structural parse
// failures always degrade to the fallback scan.
func ExtractPages(archivePath string) (*Book, error) {
	fi, err := os.Stat(archivePath)
	if err != nil {
		return nil, archive.ErrNotFound
	}

	r, err := archive.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	book := &Book{FileSize: fi.Size()}

	if order, ok := resolvePageOrder(r); ok {
		for _, name := range order {
			data, err := r.Read(name)
			if err != nil {
				continue
			}
			book.Pages = append(book.Pages, Page{Name: name, DataURL: dataURL(name, data)})
		}
		if len(book.Pages) > 0 {
			return book, nil
		}
	}

	for _, name := range sortedImageEntries(r) {
		data, err := r.Read(name)
		if err != nil {
			continue
		}
		book.Pages = append(book.Pages, Page{Name: name, DataURL: dataURL(name, data)})
	}

	return book, nil
}

// Stat returns file size, name and page count without decoding any
// image payload. An unreadable archive is reported as zero pages, not
// as an error; only a missing file fails.
func Stat(archivePath string) (*BookStat, error) {
	fi, err := os.Stat(archivePath)
	if err != nil {
		return nil, archive.ErrNotFound
	}

	name := filepath.Base(archivePath)
	stat := &BookStat{
		FileSize: fi.Size(),
		FileName: name,
		FilePath: archivePath,
		Title:    models.ParseTitle(name).Title,
	}

	r, err := archive.Open(archivePath)
	if err != nil {
		return stat, nil
	}
	defer r.Close()

	for _, e := range r.Entries() {
		if imageExtensions[strings.ToLower(path.Ext(e.Name))] {
			stat.PageCount++
		}
	}
	return stat, nil
}

// sortedImageEntries is the fallback ordering: every image entry,
// sorted case-insensitively with numeric awareness so that "page2"
// comes before "page10".
func sortedImageEntries(r archive.Reader) []string {
	var names []string
	for _, e := range r.Entries() {
		if imageExtensions[strings.ToLower(path.Ext(e.Name))] {
			names = append(names, e.Name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a == b {
			return names[i] < names[j]
		}
		return natural.Less(a, b)
	})
	return names
}

func dataURL(name string, data []byte) string {
	return "data:image/" + mimeSubtype(name) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func mimeSubtype(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}
