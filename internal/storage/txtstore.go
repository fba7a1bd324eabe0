package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/epubread/epubread/internal/models"
)

// TxtStore holds reading progress for plain-text books in its own
// database file. Unlike Store it opens and closes a connection per
// operation (open, one statement, close); concurrent operations each
// pay connection-open latency. Saves replace the whole row, with none
// of the field-level merging the main progress table does.
type TxtStore struct {
	path string
}

// NewTxtStore points at (but does not open) the txt progress database.
func NewTxtStore(dbPath string) *TxtStore {
	return &TxtStore{path: dbPath}
}

// Init creates the database file and schema if absent.
func (t *TxtStore) Init() error {
	db, err := t.open()
	if err != nil {
		return err
	}
	return db.Close()
}

func (t *TxtStore) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS txt_progress (
			book_id TEXT PRIMARY KEY,
			file_name TEXT,
			file_path TEXT,
			file_size INTEGER,
			page_index INTEGER DEFAULT 0,
			total_pages INTEGER DEFAULT 0,
			updated_at INTEGER DEFAULT (strftime('%s', 'now')),
			encoding TEXT
		)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	// The encoding column arrived after the first release.
	if err := ensureColumn(db, "txt_progress", "encoding", "TEXT"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SaveProgress replaces the whole row for the book id.
func (t *TxtStore) SaveProgress(p *models.TxtProgress) error {
	db, err := t.open()
	if err != nil {
		return err
	}
	defer db.Close()

	var encoding any
	if p.Encoding != "" {
		encoding = p.Encoding
	}

	_, err = db.Exec(`
		INSERT OR REPLACE INTO txt_progress
		(book_id, file_name, file_path, file_size, page_index, total_pages, updated_at, encoding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.BookID, p.FileName, p.FilePath, p.FileSize, p.PageIndex, p.TotalPages,
		time.Now().Unix(), encoding,
	)
	return err
}

// LoadProgress returns the record for bookID, or ErrNotFound.
func (t *TxtStore) LoadProgress(bookID string) (*models.TxtProgress, error) {
	db, err := t.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	p := &models.TxtProgress{}
	var encoding sql.NullString
	err = db.QueryRow(
		"SELECT book_id, file_name, file_path, file_size, page_index, total_pages, updated_at, encoding FROM txt_progress WHERE book_id = ?",
		bookID,
	).Scan(&p.BookID, &p.FileName, &p.FilePath, &p.FileSize, &p.PageIndex, &p.TotalPages, &p.UpdatedAt, &encoding)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Encoding = encoding.String
	return p, nil
}

// ListProgress returns all records, most recently updated first.
func (t *TxtStore) ListProgress() ([]models.TxtProgress, error) {
	db, err := t.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(
		"SELECT book_id, file_name, file_path, file_size, page_index, total_pages, updated_at, encoding FROM txt_progress ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.TxtProgress{}
	for rows.Next() {
		var p models.TxtProgress
		var encoding sql.NullString
		err := rows.Scan(&p.BookID, &p.FileName, &p.FilePath, &p.FileSize,
			&p.PageIndex, &p.TotalPages, &p.UpdatedAt, &encoding)
		if err != nil {
			return nil, err
		}
		p.Encoding = encoding.String
		items = append(items, p)
	}
	return items, rows.Err()
}

// DeleteProgress removes the record; absent book ids are not an error.
func (t *TxtStore) DeleteProgress(bookID string) error {
	db, err := t.open()
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("DELETE FROM txt_progress WHERE book_id = ?", bookID)
	return err
}
