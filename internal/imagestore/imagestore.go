// Package imagestore keeps saved image files on disk, one directory
// per unique key, with a generated thumbnail alongside the original.
package imagestore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ThumbnailWidth is the pixel width thumbnails are scaled down to.
// Smaller originals are not scaled up.
const ThumbnailWidth = 320

// Store writes image files under a root directory:
//
//	<root>/<key>/original.<ext>
//	<root>/<key>/thumbnail.jpg
//	<root>/<key>/extra/<name>
type Store struct {
	root string
}

// SavedImage reports where a saved image landed.
type SavedImage struct {
	OriginalPath  string `json:"originalPath"`
	ThumbnailPath string `json:"thumbnailPath"`
}

func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the directory the store writes under.
func (s *Store) Root() string { return s.root }

// SaveOriginal writes the image bytes for key and generates its
// thumbnail. ext is the original file's extension, dot optional.
func (s *Store) SaveOriginal(key string, data []byte, ext string) (*SavedImage, error) {
	ext = normalizeExt(ext)
	dir := filepath.Join(s.root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	originalPath := filepath.Join(dir, "original"+ext)
	if err := os.WriteFile(originalPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write original: %w", err)
	}

	thumbPath := filepath.Join(dir, "thumbnail.jpg")
	if err := writeThumbnail(thumbPath, data); err != nil {
		// The record is still usable without a thumbnail; the
		// viewer falls back to the original.
		thumbPath = originalPath
	}

	return &SavedImage{OriginalPath: originalPath, ThumbnailPath: thumbPath}, nil
}

// SaveExtra writes an additional image file under the key's extra
// directory and returns its path.
func (s *Store) SaveExtra(key, name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, key, "extra")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create extra dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write extra image: %w", err)
	}
	return path, nil
}

// RemoveExtra deletes one additional image file. Missing files are
// not an error.
func (s *Store) RemoveExtra(key, name string) error {
	err := os.Remove(filepath.Join(s.root, key, "extra", filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Delete removes everything stored for key.
func (s *Store) Delete(key string) error {
	return os.RemoveAll(filepath.Join(s.root, key))
}

// ListKeys returns every key directory present under the root, sorted.
func (s *Store) ListKeys() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image root: %w", err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func writeThumbnail(path string, data []byte) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width > ThumbnailWidth {
		height = height * ThumbnailWidth / width
		if height < 1 {
			height = 1
		}
		width = ThumbnailWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, dst, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return "." + ext
	default:
		return ".jpg"
	}
}
