package storage

import (
	"database/sql"
	"time"

	"github.com/epubread/epubread/internal/models"
)

// SaveProgress upserts a reading-progress record keyed by book id.
// The merge is deliberately asymmetric: file name, path and size are
// identity fields and keep their prior values when the incoming save
// omits them, while page index, total pages, rtl, spread mode and the
// timestamp are always overwritten. A save from a view that no longer
// knows the file identity must not erase it.
func (s *Store) SaveProgress(p *models.ReadingProgress) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	spreadMode := p.SpreadMode
	if spreadMode == "" {
		spreadMode = "single"
	}
	rtl := 0
	if p.RTL {
		rtl = 1
	}

	_, err = db.Exec(`
		INSERT INTO reading_progress (book_id, file_name, file_path, file_size, page_index, total_pages, rtl, spread_mode, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			file_name = CASE WHEN excluded.file_name != '' THEN excluded.file_name ELSE reading_progress.file_name END,
			file_path = CASE WHEN excluded.file_path != '' THEN excluded.file_path ELSE reading_progress.file_path END,
			file_size = CASE WHEN excluded.file_size > 0 THEN excluded.file_size ELSE reading_progress.file_size END,
			page_index = excluded.page_index,
			total_pages = excluded.total_pages,
			rtl = excluded.rtl,
			spread_mode = excluded.spread_mode,
			updated_at = excluded.updated_at`,
		p.BookID, p.FileName, p.FilePath, p.FileSize, p.PageIndex, p.TotalPages,
		rtl, spreadMode, time.Now().UnixMilli(),
	)
	return err
}

// LoadProgress returns the record for bookID, or ErrNotFound.
func (s *Store) LoadProgress(bookID string) (*models.ReadingProgress, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	p, err := scanProgress(db.QueryRow(
		"SELECT book_id, file_name, file_path, file_size, page_index, total_pages, rtl, spread_mode, updated_at FROM reading_progress WHERE book_id = ?",
		bookID,
	))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProgress returns all records, most recently updated first.
func (s *Store) ListProgress() ([]models.ReadingProgress, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT book_id, file_name, file_path, file_size, page_index, total_pages, rtl, spread_mode, updated_at FROM reading_progress ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ReadingProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// DeleteProgress removes the record unconditionally; deleting an
// absent book id is not an error.
func (s *Store) DeleteProgress(bookID string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec("DELETE FROM reading_progress WHERE book_id = ?", bookID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*models.ReadingProgress, error) {
	p := &models.ReadingProgress{}
	var rtl int
	err := row.Scan(&p.BookID, &p.FileName, &p.FilePath, &p.FileSize,
		&p.PageIndex, &p.TotalPages, &rtl, &p.SpreadMode, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.RTL = rtl != 0
	return p, nil
}
