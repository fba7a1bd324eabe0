package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epubread/epubread/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "epub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func testImage(key string) *models.ImageRecord {
	return &models.ImageRecord{
		UniqueKey:     key,
		Name:          "cover-" + key + ".png",
		Size:          2048,
		Type:          "image/png",
		SizeFormatted: models.FormatSize(2048),
		OriginalPath:  "jsondata/images/" + key + "/original.png",
		ThumbnailPath: "jsondata/images/" + key + "/thumbnail.jpg",
		CreatedAt:     1700000000000,
		UpdatedAt:     1700000000000,
		Date:          "2023-11-14",
		Description:   "a cover",
		Tags:          []string{"manga", "cover"},
	}
}

func TestSaveAndGetImage(t *testing.T) {
	s := setupTestStore(t)

	rec := testImage("k1")
	require.NoError(t, s.SaveImage(rec))

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.OriginalPath, got.OriginalPath)
	assert.Equal(t, rec.ThumbnailPath, got.ThumbnailPath)
	assert.ElementsMatch(t, []string{"manga", "cover"}, got.Tags)
	assert.Empty(t, got.AdditionalImages)
}

func TestGetImageNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetImage("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResaveAppendsTags(t *testing.T) {
	s := setupTestStore(t)

	rec := testImage("k1")
	require.NoError(t, s.SaveImage(rec))

	// Saves append their tags to the existing set; replacing the set
	// is UpdateImage's job.
	rec.Tags = []string{"extra"}
	require.NoError(t, s.SaveImage(rec))

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"manga", "cover", "extra"}, got.Tags)
}

func TestListImagesPagination(t *testing.T) {
	s := setupTestStore(t)

	for i := 0; i < 25; i++ {
		rec := testImage(fmt.Sprintf("k%02d", i))
		rec.CreatedAt = int64(1700000000000 + i)
		require.NoError(t, s.SaveImage(rec))
	}

	sizes := []int{10, 10, 5}
	for page := 1; page <= 3; page++ {
		list, err := s.ListImages(page, 10, "")
		require.NoError(t, err)
		assert.Len(t, list.Items, sizes[page-1], "page %d", page)
		assert.Equal(t, 25, list.TotalCount)
		assert.Equal(t, 3, list.TotalPages)
	}

	// Newest first.
	list, err := s.ListImages(1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, "k24", list.Items[0].UniqueKey)

	// Past the end is an empty page, not an error.
	list, err = s.ListImages(4, 10, "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestListImagesSearch(t *testing.T) {
	s := setupTestStore(t)

	a := testImage("a")
	a.Name = "sunset landscape"
	a.Description = ""
	b := testImage("b")
	b.Name = "portrait"
	b.Description = "taken at sunset"
	c := testImage("c")
	c.Name = "noise"
	c.Description = "nothing relevant"
	for _, rec := range []*models.ImageRecord{a, b, c} {
		require.NoError(t, s.SaveImage(rec))
	}

	list, err := s.ListImages(1, 10, "sunset")
	require.NoError(t, err)
	assert.Equal(t, 2, list.TotalCount)

	list, err = s.ListImages(1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 3, list.TotalCount)
}

func TestUpdateImagePartialFields(t *testing.T) {
	s := setupTestStore(t)

	rec := testImage("k1")
	require.NoError(t, s.SaveImage(rec))

	desc := "new description"
	require.NoError(t, s.UpdateImage("k1", models.ImageUpdate{Description: &desc}))

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.Equal(t, "new description", got.Description)
	// Untouched fields keep prior values; the timestamp advances.
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Date, got.Date)
	assert.Greater(t, got.UpdatedAt, rec.UpdatedAt)
	assert.ElementsMatch(t, rec.Tags, got.Tags)
}

func TestUpdateImageReplacesTags(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveImage(testImage("k1")))
	require.NoError(t, s.UpdateImage("k1", models.ImageUpdate{Tags: []string{"only"}}))

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got.Tags)

	// An empty non-nil slice clears the set.
	require.NoError(t, s.UpdateImage("k1", models.ImageUpdate{Tags: []string{}}))
	got, err = s.GetImage("k1")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestDeleteImageRemovesChildren(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveImage(testImage("k1")))
	require.NoError(t, s.AddAdditionalImage("k1", &models.AdditionalImage{
		UniqueKey: "k1-extra", Name: "extra.jpg", Size: 10,
		Type: "image/jpeg", SizeFormatted: models.FormatSize(10), CreatedAt: 1,
	}))

	require.NoError(t, s.DeleteImage("k1"))

	_, err := s.GetImage("k1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Child tables are empty for the deleted key.
	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TagCount)
	assert.Zero(t, stats.AdditionalImageCount)
}

func TestAddAdditionalImageRequiresParent(t *testing.T) {
	s := setupTestStore(t)

	err := s.AddAdditionalImage("nobody", &models.AdditionalImage{
		UniqueKey: "x", Name: "x.jpg", Size: 1,
		Type: "image/jpeg", SizeFormatted: models.FormatSize(1), CreatedAt: 1,
	})
	assert.Error(t, err)
}

func TestRemoveAdditionalImage(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveImage(testImage("k1")))
	require.NoError(t, s.AddAdditionalImage("k1", &models.AdditionalImage{
		UniqueKey: "e1", Name: "e.jpg", Size: 1,
		Type: "image/jpeg", SizeFormatted: models.FormatSize(1), CreatedAt: 1,
	}))
	require.NoError(t, s.RemoveAdditionalImage("k1", "e1"))

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.Empty(t, got.AdditionalImages)
}

func TestGetImagePaths(t *testing.T) {
	s := setupTestStore(t)

	rec := testImage("k1")
	require.NoError(t, s.SaveImage(rec))

	paths, err := s.GetImagePaths("k1")
	require.NoError(t, err)
	assert.Equal(t, rec.OriginalPath, paths.OriginalPath)
	assert.Equal(t, rec.ThumbnailPath, paths.ThumbnailPath)

	_, err = s.GetImagePaths("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHealthCheck(t *testing.T) {
	s := setupTestStore(t)

	report, err := s.HealthCheck()
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.True(t, report.ForeignKeys)
	assert.Empty(t, report.MissingTables)
	assert.Empty(t, report.MissingIndexes)
	assert.Contains(t, report.Tables, "images")
}

func TestHealthCheckReportsMissingIndex(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.db.Exec("DROP INDEX idx_images_date")
	require.NoError(t, err)

	report, err := s.HealthCheck()
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Equal(t, []string{"idx_images_date"}, report.MissingIndexes)
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Close())

	assert.False(t, s.Ready())
	assert.ErrorIs(t, s.SaveImage(testImage("k1")), ErrStoreClosed)
	_, err := s.ListImages(1, 10, "")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.HealthCheck()
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestMigrateIsIdempotentAndAdditive(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "epub.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.SaveImage(testImage("k1")))
	require.NoError(t, s.Close())

	// Reopening an existing database keeps its data.
	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetImage("k1")
	require.NoError(t, err)
	assert.Equal(t, "k1", got.UniqueKey)
}
