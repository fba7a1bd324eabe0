package models

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// ImageRecord is a row in the images table. Image bytes live on disk
// under the key's directory; the record only carries paths.
type ImageRecord struct {
	UniqueKey     string `json:"uniqueKey"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	SizeFormatted string `json:"sizeFormatted"`
	OriginalPath  string `json:"originalPath,omitempty"`
	ThumbnailPath string `json:"thumbnailPath,omitempty"`
	CreatedAt     int64  `json:"createdAt"` // unix milliseconds
	UpdatedAt     int64  `json:"updatedAt"`
	Date          string `json:"date"` // YYYY-MM-DD display label
	Description   string `json:"description"`

	Tags             []string          `json:"tags"`
	AdditionalImages []AdditionalImage `json:"additionalImages,omitempty"`
}

// AdditionalImage is a secondary image attached to an ImageRecord.
// Same attributes as the parent, minus description and tags.
type AdditionalImage struct {
	ParentKey     string `json:"parentKey"`
	UniqueKey     string `json:"uniqueKey"`
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	SizeFormatted string `json:"sizeFormatted"`
	OriginalPath  string `json:"originalPath,omitempty"`
	ThumbnailPath string `json:"thumbnailPath,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
}

// ImageUpdate carries a partial update for an ImageRecord. Nil pointer
// fields are left untouched; a non-nil Tags slice replaces the whole
// tag set (an empty non-nil slice clears it).
type ImageUpdate struct {
	Name          *string  `json:"name,omitempty"`
	Size          *int64   `json:"size,omitempty"`
	Type          *string  `json:"type,omitempty"`
	SizeFormatted *string  `json:"sizeFormatted,omitempty"`
	OriginalPath  *string  `json:"originalPath,omitempty"`
	ThumbnailPath *string  `json:"thumbnailPath,omitempty"`
	Date          *string  `json:"date,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// ImagePaths is the on-disk location pair for one record.
type ImagePaths struct {
	OriginalPath  string `json:"originalPath"`
	ThumbnailPath string `json:"thumbnailPath"`
}

// NewUniqueKey generates a caller-assignable unique key for a record.
func NewUniqueKey() string {
	return uuid.New().String()
}

// FormatSize renders a byte count the way list views display it.
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// BookID derives the progress-record identity from file name and size.
func BookID(fileName string, size int64) string {
	return fmt.Sprintf("%s-%d", fileName, size)
}
