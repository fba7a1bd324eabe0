package models

// ReadingProgress tracks where a reader left off in a paged book.
// One row per book id; saves merge into any existing row.
type ReadingProgress struct {
	BookID     string `json:"bookId"`
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	FileSize   int64  `json:"fileSize"`
	PageIndex  int    `json:"pageIndex"`
	TotalPages int    `json:"totalPages"`
	RTL        bool   `json:"rtl"`
	SpreadMode string `json:"spreadMode"` // "single" or "double"
	UpdatedAt  int64  `json:"updatedAt"`  // unix milliseconds
}

// TxtProgress is the plain-text-book counterpart of ReadingProgress.
// It lives in its own database file and saves replace the whole row.
type TxtProgress struct {
	BookID     string `json:"bookId"`
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	FileSize   int64  `json:"fileSize"`
	PageIndex  int    `json:"pageIndex"`
	TotalPages int    `json:"totalPages"`
	UpdatedAt  int64  `json:"updatedAt"` // unix seconds
	Encoding   string `json:"encoding,omitempty"`
}
