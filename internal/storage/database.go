package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns the primary metadata database: image records, tags,
// additional images and reading progress. One long-lived connection,
// opened once at startup. The store has an explicit lifecycle
// (unopened -> open -> closed); every operation on a store that is not
// open returns ErrStoreClosed.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at dbPath, enables
// foreign-key enforcement for the connection, and brings the schema up
// to date. Schema upgrades are additive only: tables and indexes are
// created if absent and missing columns are added, nothing is dropped.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return s, nil
}

// Ready reports whether the store is open. This is the lifecycle
// question only; HealthCheck answers whether the schema is intact.
func (s *Store) Ready() bool {
	return s.db != nil
}

// Close closes the connection. Further operations return ErrStoreClosed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}
	return s.db, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		unique_key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		type TEXT NOT NULL,
		size_formatted TEXT NOT NULL,
		original_path TEXT NOT NULL DEFAULT '',
		thumbnail_path TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		date TEXT NOT NULL,
		description TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		image_key TEXT NOT NULL,
		tag TEXT NOT NULL,
		FOREIGN KEY (image_key) REFERENCES images(unique_key) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS additional_images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_key TEXT NOT NULL,
		unique_key TEXT NOT NULL,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		type TEXT NOT NULL,
		size_formatted TEXT NOT NULL,
		original_path TEXT NOT NULL DEFAULT '',
		thumbnail_path TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		FOREIGN KEY (parent_key) REFERENCES images(unique_key) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reading_progress (
		book_id TEXT PRIMARY KEY,
		file_name TEXT DEFAULT '',
		file_path TEXT DEFAULT '',
		file_size INTEGER DEFAULT 0,
		page_index INTEGER NOT NULL,
		total_pages INTEGER NOT NULL,
		rtl INTEGER DEFAULT 0,
		spread_mode TEXT DEFAULT 'single',
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_created_at ON images(created_at);
	CREATE INDEX IF NOT EXISTS idx_images_date ON images(date);
	CREATE INDEX IF NOT EXISTS idx_tags_image_key ON tags(image_key);
	CREATE INDEX IF NOT EXISTS idx_additional_images_parent_key ON additional_images(parent_key);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created by older releases predate some columns.
	columns := []struct{ table, column, typ string }{
		{"images", "original_path", "TEXT"},
		{"images", "thumbnail_path", "TEXT"},
		{"additional_images", "original_path", "TEXT"},
		{"additional_images", "thumbnail_path", "TEXT"},
		{"reading_progress", "file_name", "TEXT"},
		{"reading_progress", "file_path", "TEXT"},
		{"reading_progress", "file_size", "INTEGER"},
	}
	for _, c := range columns {
		if err := ensureColumn(s.db, c.table, c.column, c.typ); err != nil {
			return err
		}
	}
	return nil
}

// ensureColumn adds column to table when PRAGMA table_info does not
// list it. ALTER TABLE ADD COLUMN is the only upgrade primitive used,
// so existing data is never touched.
func ensureColumn(db *sql.DB, table, column, typ string) error {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             any
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
	return err
}

// HealthReport is the result of a schema health check.
type HealthReport struct {
	Healthy        bool     `json:"healthy"`
	Tables         []string `json:"tables,omitempty"`
	Indexes        []string `json:"indexes,omitempty"`
	MissingTables  []string `json:"missingTables,omitempty"`
	MissingIndexes []string `json:"missingIndexes,omitempty"`
	ForeignKeys    bool     `json:"foreignKeys"`
}

var (
	requiredTables  = []string{"images", "tags", "additional_images"}
	requiredIndexes = []string{
		"idx_images_created_at",
		"idx_images_date",
		"idx_tags_image_key",
		"idx_additional_images_parent_key",
	}
)

// HealthCheck verifies the required tables and indexes exist and that
// foreign-key enforcement is active on the connection. The report names
// each missing element so callers can distinguish a broken schema from
// a store that simply has not been opened (ErrStoreClosed).
func (s *Store) HealthCheck() (*HealthReport, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	tables, err := masterNames(db, "table")
	if err != nil {
		return nil, err
	}
	indexes, err := masterNames(db, "index")
	if err != nil {
		return nil, err
	}

	report := &HealthReport{Tables: tables, Indexes: indexes}
	report.MissingTables = missingFrom(requiredTables, tables)
	report.MissingIndexes = missingFrom(requiredIndexes, indexes)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		return nil, err
	}
	report.ForeignKeys = fk == 1

	report.Healthy = len(report.MissingTables) == 0 &&
		len(report.MissingIndexes) == 0 &&
		report.ForeignKeys
	return report, nil
}

func masterNames(db *sql.DB, kind string) ([]string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = ?", kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func missingFrom(required, present []string) []string {
	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}
	var missing []string
	for _, name := range required {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Stats holds row counts for the metadata tables.
type Stats struct {
	ImageCount           int `json:"imageCount"`
	TagCount             int `json:"tagCount"`
	AdditionalImageCount int `json:"additionalImageCount"`
	TotalRecords         int `json:"totalRecords"`
}

// GetStats returns row counts across the metadata tables.
func (s *Store) GetStats() (*Stats, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	counts := []struct {
		table string
		dst   *int
	}{
		{"images", &stats.ImageCount},
		{"tags", &stats.TagCount},
		{"additional_images", &stats.AdditionalImageCount},
	}
	for _, c := range counts {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	stats.TotalRecords = stats.ImageCount + stats.TagCount + stats.AdditionalImageCount
	return stats, nil
}
