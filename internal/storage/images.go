package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/epubread/epubread/internal/models"
)

// listColumns is the metadata-only projection used by list queries.
// File paths and anything else a list view does not render stay out.
const listColumns = "unique_key, name, size, type, size_formatted, created_at, updated_at, date, description"

const fullColumns = "unique_key, name, size, type, size_formatted, original_path, thumbnail_path, created_at, updated_at, date, description"

// SaveImage upserts the record by unique key and inserts its tags, as
// one transaction. Tags are appended to any existing set, never
// merged; UpdateImage is the replace-tags path. The upsert updates in
// place rather than OR REPLACE, which would delete the old row and
// cascade its tags away.
func (s *Store) SaveImage(rec *models.ImageRecord) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO images (
			unique_key, name, size, type, size_formatted,
			original_path, thumbnail_path, created_at, updated_at, date, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unique_key) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			type = excluded.type,
			size_formatted = excluded.size_formatted,
			original_path = excluded.original_path,
			thumbnail_path = excluded.thumbnail_path,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			date = excluded.date,
			description = excluded.description`,
		rec.UniqueKey, rec.Name, rec.Size, rec.Type, rec.SizeFormatted,
		rec.OriginalPath, rec.ThumbnailPath, rec.CreatedAt, rec.UpdatedAt,
		rec.Date, rec.Description,
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, tag := range rec.Tags {
		if _, err := tx.Exec("INSERT INTO tags (image_key, tag) VALUES (?, ?)", rec.UniqueKey, tag); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// ImageList is one page of image records plus pagination totals.
type ImageList struct {
	Items      []models.ImageRecord `json:"images"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// ListImages returns one page of records ordered newest-first by
// creation time. A non-empty search matches name OR description as a
// substring; case folding follows SQLite's LIKE (ASCII only). Only
// list-view columns are fetched.
func (s *Store) ListImages(page, pageSize int, search string) (*ImageList, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := "SELECT " + listColumns + " FROM images"
	countQuery := "SELECT COUNT(*) FROM images"
	var args []any

	if search != "" {
		cond := " WHERE name LIKE ? OR description LIKE ?"
		query += cond
		countQuery += cond
		term := "%" + search + "%"
		args = append(args, term, term)
	}

	var total int
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	rows, err := db.Query(query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := &ImageList{
		Items:      []models.ImageRecord{},
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	for rows.Next() {
		var rec models.ImageRecord
		err := rows.Scan(&rec.UniqueKey, &rec.Name, &rec.Size, &rec.Type, &rec.SizeFormatted,
			&rec.CreatedAt, &rec.UpdatedAt, &rec.Date, &rec.Description)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list.Items {
		tags, err := s.imageTags(db, list.Items[i].UniqueKey)
		if err != nil {
			return nil, err
		}
		list.Items[i].Tags = tags
	}
	return list, nil
}

// GetImage returns the full record, including tags and additional
// images. Returns ErrNotFound when the key is absent.
func (s *Store) GetImage(key string) (*models.ImageRecord, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rec := &models.ImageRecord{}
	err = db.QueryRow("SELECT "+fullColumns+" FROM images WHERE unique_key = ?", key).Scan(
		&rec.UniqueKey, &rec.Name, &rec.Size, &rec.Type, &rec.SizeFormatted,
		&rec.OriginalPath, &rec.ThumbnailPath, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.Date, &rec.Description,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if rec.Tags, err = s.imageTags(db, key); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT parent_key, unique_key, name, size, type, size_formatted,
		       original_path, thumbnail_path, created_at
		FROM additional_images WHERE parent_key = ?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.AdditionalImage
		err := rows.Scan(&a.ParentKey, &a.UniqueKey, &a.Name, &a.Size, &a.Type,
			&a.SizeFormatted, &a.OriginalPath, &a.ThumbnailPath, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.AdditionalImages = append(rec.AdditionalImages, a)
	}
	return rec, rows.Err()
}

// UpdateImage updates only the supplied scalar fields, refreshing the
// update timestamp whenever at least one scalar is supplied. A non-nil
// Tags slice replaces the whole tag set in the same transaction.
// Omitted fields keep their prior values.
func (s *Store) UpdateImage(key string, up models.ImageUpdate) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if up.Name != nil {
		add("name", *up.Name)
	}
	if up.Size != nil {
		add("size", *up.Size)
	}
	if up.Type != nil {
		add("type", *up.Type)
	}
	if up.SizeFormatted != nil {
		add("size_formatted", *up.SizeFormatted)
	}
	if up.OriginalPath != nil {
		add("original_path", *up.OriginalPath)
	}
	if up.ThumbnailPath != nil {
		add("thumbnail_path", *up.ThumbnailPath)
	}
	if up.Date != nil {
		add("date", *up.Date)
	}
	if up.Description != nil {
		add("description", *up.Description)
	}

	if len(sets) == 0 && up.Tags == nil {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if len(sets) > 0 {
		add("updated_at", time.Now().UnixMilli())
		args = append(args, key)
		query := "UPDATE images SET " + strings.Join(sets, ", ") + " WHERE unique_key = ?"
		if _, err := tx.Exec(query, args...); err != nil {
			tx.Rollback()
			return err
		}
	}

	if up.Tags != nil {
		if _, err := tx.Exec("DELETE FROM tags WHERE image_key = ?", key); err != nil {
			tx.Rollback()
			return err
		}
		for _, tag := range up.Tags {
			if _, err := tx.Exec("INSERT INTO tags (image_key, tag) VALUES (?, ?)", key, tag); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteImage removes the record, its tags and its additional images in
// one transaction. The child deletes are explicit even though the
// declared cascade would cover them, so behavior holds even on a
// connection where cascade support is off.
func (s *Store) DeleteImage(key string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	statements := []string{
		"DELETE FROM tags WHERE image_key = ?",
		"DELETE FROM additional_images WHERE parent_key = ?",
		"DELETE FROM images WHERE unique_key = ?",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, key); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// AddAdditionalImage inserts a secondary image under parentKey. The
// foreign key rejects a parent that does not exist.
func (s *Store) AddAdditionalImage(parentKey string, img *models.AdditionalImage) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO additional_images (
			parent_key, unique_key, name, size, type, size_formatted,
			original_path, thumbnail_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		parentKey, img.UniqueKey, img.Name, img.Size, img.Type, img.SizeFormatted,
		img.OriginalPath, img.ThumbnailPath, img.CreatedAt,
	)
	return err
}

// RemoveAdditionalImage deletes one secondary image scoped by parent
// key plus its own key.
func (s *Store) RemoveAdditionalImage(parentKey, imageKey string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec("DELETE FROM additional_images WHERE parent_key = ? AND unique_key = ?", parentKey, imageKey)
	return err
}

// GetImagePaths returns the on-disk original/thumbnail path pair for a
// record, for callers that read the files directly.
func (s *Store) GetImagePaths(key string) (*models.ImagePaths, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	paths := &models.ImagePaths{}
	err = db.QueryRow("SELECT original_path, thumbnail_path FROM images WHERE unique_key = ?", key).
		Scan(&paths.OriginalPath, &paths.ThumbnailPath)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Store) imageTags(db *sql.DB, key string) ([]string, error) {
	rows, err := db.Query("SELECT tag FROM tags WHERE image_key = ?", key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
