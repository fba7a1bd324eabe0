package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/models"
)

// SaveImage stores an uploaded image file and its database record
func (h *Handler) SaveImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	key := models.NewUniqueKey()
	saved, err := h.images.SaveOriginal(key, data, filepath.Ext(header.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	now := time.Now().UnixMilli()
	rec := &models.ImageRecord{
		UniqueKey:     key,
		Name:          header.Filename,
		Size:          header.Size,
		Type:          header.Header.Get("Content-Type"),
		SizeFormatted: models.FormatSize(header.Size),
		OriginalPath:  saved.OriginalPath,
		ThumbnailPath: saved.ThumbnailPath,
		CreatedAt:     now,
		UpdatedAt:     now,
		Date:          c.PostForm("date"),
		Description:   c.PostForm("description"),
	}
	if tags := c.PostForm("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				rec.Tags = append(rec.Tags, t)
			}
		}
	}

	if err := h.store.SaveImage(rec); err != nil {
		h.images.Delete(key)
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListImages returns one page of image records
func (h *Handler) ListImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	list, err := h.store.ListImages(page, pageSize, c.Query("search"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetImage returns one record with its tags and additional images
func (h *Handler) GetImage(c *gin.Context) {
	rec, err := h.store.GetImage(c.Param("key"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateImage applies a partial update to a record
func (h *Handler) UpdateImage(c *gin.Context) {
	var update models.ImageUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update payload"})
		return
	}

	if err := h.store.UpdateImage(c.Param("key"), update); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeleteImage removes the record and its files
func (h *Handler) DeleteImage(c *gin.Context) {
	key := c.Param("key")
	if err := h.store.DeleteImage(key); err != nil {
		storeError(c, err)
		return
	}
	if err := h.images.Delete(key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AddAdditionalImage attaches an extra file to an existing record
func (h *Handler) AddAdditionalImage(c *gin.Context) {
	key := c.Param("key")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	path, err := h.images.SaveExtra(key, header.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	extra := &models.AdditionalImage{
		UniqueKey:     models.NewUniqueKey(),
		Name:          header.Filename,
		Size:          header.Size,
		Type:          header.Header.Get("Content-Type"),
		SizeFormatted: models.FormatSize(header.Size),
		OriginalPath:  path,
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := h.store.AddAdditionalImage(key, extra); err != nil {
		h.images.RemoveExtra(key, header.Filename)
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, extra)
}

// RemoveAdditionalImage detaches one extra file from a record
func (h *Handler) RemoveAdditionalImage(c *gin.Context) {
	key := c.Param("key")
	extraKey := c.Param("extraKey")

	rec, err := h.store.GetImage(key)
	if err != nil {
		storeError(c, err)
		return
	}

	if err := h.store.RemoveAdditionalImage(key, extraKey); err != nil {
		storeError(c, err)
		return
	}
	for _, extra := range rec.AdditionalImages {
		if extra.UniqueKey == extraKey {
			h.images.RemoveExtra(key, extra.Name)
		}
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// GetImagePaths returns just the file paths for a record
func (h *Handler) GetImagePaths(c *gin.Context) {
	paths, err := h.store.GetImagePaths(c.Param("key"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paths)
}
