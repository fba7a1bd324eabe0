// Package pdf reports page counts for PDF books in the library.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/epubread/epubread/internal/models"
)

// BookStat describes a PDF file for the library listing.
type BookStat struct {
	FileSize  int64  `json:"fileSize"`
	FileName  string `json:"fileName"`
	FilePath  string `json:"filePath"`
	BookID    string `json:"bookId"`
	Title     string `json:"title"`
	PageCount int    `json:"pageCount"`
}

// Stat returns size and page count for the PDF at path. A file that
// exists but cannot be parsed still stats, with a zero page count.
func Stat(path string) (*BookStat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	name := filepath.Base(path)
	stat := &BookStat{
		FileSize: info.Size(),
		FileName: name,
		FilePath: path,
		BookID:   models.BookID(name, info.Size()),
		Title:    models.ParseTitle(name).Title,
	}
	stat.PageCount, _ = pageCount(path)
	return stat, nil
}

// Validate reports whether the file at path is a well-formed PDF.
func Validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return api.Validate(f, model.NewDefaultConfiguration())
}

func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := api.PDFInfo(f, path, nil, false, model.NewDefaultConfiguration())
	if err != nil {
		return 0, err
	}
	return info.PageCount, nil
}
