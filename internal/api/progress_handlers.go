package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epubread/epubread/internal/models"
)

// SaveProgress upserts an EPUB reading position
func (h *Handler) SaveProgress(c *gin.Context) {
	var p models.ReadingProgress
	if err := c.ShouldBindJSON(&p); err != nil || p.BookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid progress payload"})
		return
	}

	if err := h.store.SaveProgress(&p); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// LoadProgress returns the stored position for one book
func (h *Handler) LoadProgress(c *gin.Context) {
	p, err := h.store.LoadProgress(c.Param("bookId"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProgress returns every stored position, most recent first
func (h *Handler) ListProgress(c *gin.Context) {
	list, err := h.store.ListProgress()
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// DeleteProgress removes the stored position for one book
func (h *Handler) DeleteProgress(c *gin.Context) {
	if err := h.store.DeleteProgress(c.Param("bookId")); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SaveTxtProgress replaces the stored position for a text book
func (h *Handler) SaveTxtProgress(c *gin.Context) {
	var p models.TxtProgress
	if err := c.ShouldBindJSON(&p); err != nil || p.BookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid progress payload"})
		return
	}

	if err := h.txtStore.SaveProgress(&p); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true})
}

// LoadTxtProgress returns the stored position for one text book
func (h *Handler) LoadTxtProgress(c *gin.Context) {
	p, err := h.txtStore.LoadProgress(c.Param("bookId"))
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListTxtProgress returns every stored text position
func (h *Handler) ListTxtProgress(c *gin.Context) {
	list, err := h.txtStore.ListProgress()
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// DeleteTxtProgress removes the stored position for one text book
func (h *Handler) DeleteTxtProgress(c *gin.Context) {
	if err := h.txtStore.DeleteProgress(c.Param("bookId")); err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
