// Package txt loads plain-text books, detecting the encoding and
// splitting the content into fixed-size pages.
package txt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/epubread/epubread/internal/models"
)

// PageRunes is how many runes fit on one text page.
const PageRunes = 2000

// Book is a fully decoded text book split into pages.
type Book struct {
	Pages      []string `json:"pages"`
	TotalPages int      `json:"totalPages"`
	Encoding   string   `json:"encoding"`
	FileSize   int64    `json:"fileSize"`
}

// BookStat describes a text file without decoding all of it.
type BookStat struct {
	FileSize   int64  `json:"fileSize"`
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	BookID     string `json:"bookId"`
	Title      string `json:"title"`
	TotalPages int    `json:"totalPages"`
	Encoding   string `json:"encoding"`
}

// ReadContent decodes the file at path and splits it into pages of
// PageRunes runes each.
func ReadContent(path string) (*Book, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat text file: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}

	text, enc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	pages := paginate(text)
	return &Book{
		Pages:      pages,
		TotalPages: len(pages),
		Encoding:   enc,
		FileSize:   info.Size(),
	}, nil
}

// Stat decodes just enough of the file to report page count and
// encoding for the library listing.
func Stat(path string) (*BookStat, error) {
	book, err := ReadContent(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	return &BookStat{
		FileSize:   book.FileSize,
		FileName:   name,
		FilePath:   path,
		BookID:     models.BookID(name, book.FileSize),
		Title:      models.ParseTitle(name).Title,
		TotalPages: book.TotalPages,
		Encoding:   book.Encoding,
	}, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decode picks the encoding: BOM first, then valid UTF-8, then
// GB18030 with a GBK fallback.
func decode(raw []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), "utf-8", nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return decodeWith(raw, "utf-16le")
	case bytes.HasPrefix(raw, bomUTF16BE):
		return decodeWith(raw, "utf-16be")
	}

	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}

	if text, enc, err := decodeWith(raw, "gb18030"); err == nil {
		return text, enc, nil
	}
	return decodeWith(raw, "gbk")
}

func decodeWith(raw []byte, name string) (string, string, error) {
	var dec *encoding.Decoder
	switch name {
	case "utf-16le":
		dec = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case "utf-16be":
		dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case "gb18030":
		dec = simplifiedchinese.GB18030.NewDecoder()
	case "gbk":
		dec = simplifiedchinese.GBK.NewDecoder()
	default:
		return "", "", fmt.Errorf("unknown encoding %q", name)
	}

	out, err := dec.Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}

// paginate splits text into chunks of PageRunes runes. An empty file
// still gets one empty page so the reader has something to show.
func paginate(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	pages := make([]string, 0, (len(runes)+PageRunes-1)/PageRunes)
	for start := 0; start < len(runes); start += PageRunes {
		end := start + PageRunes
		if end > len(runes) {
			end = len(runes)
		}
		pages = append(pages, string(runes[start:end]))
	}
	return pages
}
